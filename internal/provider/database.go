// File: internal/provider/database.go
package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"nujum_backend/internal/common"
	"nujum_backend/internal/config"
	"nujum_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Identity is a stored credential record for the database backend.
type Identity struct {
	common.BaseModel
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

// TableName specifies the table name for the Identity model.
func (Identity) TableName() string {
	return "identities"
}

// SessionRow persists the current session token so a restarted process can
// resume it, mirroring a hosted provider's session endpoint.
type SessionRow struct {
	common.BaseModel
	IdentityID uuid.UUID `gorm:"type:uuid;index;not null"`
	Token      string    `gorm:"type:text;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for the SessionRow model.
func (SessionRow) TableName() string {
	return "sessions"
}

// DatabaseProvider is the self-hosted identity backend: identities, session
// tokens and profile rows in the relational database.
type DatabaseProvider struct {
	db       *gorm.DB
	profiles ProfileRepository
	tokens   *tokenService
	events   *broadcaster
	logger   *zap.Logger
}

// NewDatabaseProvider creates the AUTH_BACKEND=database strategy.
func NewDatabaseProvider(db *gorm.DB, profiles ProfileRepository, cfg *config.Config, logger *zap.Logger) *DatabaseProvider {
	return &DatabaseProvider{
		db:       db,
		profiles: profiles,
		tokens:   newTokenService(cfg.SessionTokenSecret, cfg.SessionTokenTTL),
		events:   newBroadcaster(),
		logger:   logger.Named("DatabaseProvider"),
	}
}

var _ Provider = (*DatabaseProvider)(nil)

func (p *DatabaseProvider) SignIn(ctx context.Context, email, password string) error {
	var identity Identity
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !common.CheckPasswordHash(password, identity.PasswordHash) {
		return ErrInvalidCredentials
	}

	token, expiresAt, err := p.tokens.generate(identity.ID, identity.Email)
	if err != nil {
		return err
	}

	// One current session at a time; a new sign-in replaces the old one.
	if err := p.db.WithContext(ctx).Where("1 = 1").Delete(&SessionRow{}).Error; err != nil {
		return err
	}
	row := &SessionRow{IdentityID: identity.ID, Token: token, ExpiresAt: expiresAt}
	if err := p.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}

	p.events.publish(Event{Type: EventSignedIn, UserID: identity.ID})
	return nil
}

func (p *DatabaseProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	normalized := normalizeEmail(email)

	var count int64
	if err := p.db.WithContext(ctx).Model(&Identity{}).Where("email = ?", normalized).Count(&count).Error; err != nil {
		return uuid.Nil, err
	}
	if count > 0 {
		return uuid.Nil, ErrEmailTaken
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	identity := &Identity{Email: normalized, PasswordHash: hash}
	if err := p.db.WithContext(ctx).Create(identity).Error; err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "UNIQUE") {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, err
	}

	// The profile row shares the identity's id so GetProfile and
	// UpdateProfile address it directly.
	profile := &ProfileRow{
		BaseModel:          common.BaseModel{ID: identity.ID},
		Email:              normalized,
		VerificationStatus: string(user.VerificationPending),
	}
	if err := p.profiles.Create(ctx, profile); err != nil {
		return uuid.Nil, err
	}

	return identity.ID, nil
}

func (p *DatabaseProvider) SignOut(ctx context.Context) error {
	var row SessionRow
	err := p.db.WithContext(ctx).Order("created_at desc").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	deleteErr := p.db.WithContext(ctx).Where("1 = 1").Delete(&SessionRow{}).Error
	p.events.publish(Event{Type: EventSignedOut, UserID: row.IdentityID})
	return deleteErr
}

// CurrentUser validates the stored session token. An expired token is
// treated as a remote sign-out: the row is purged and subscribers are
// notified, covering the expired-token-in-another-tab case.
func (p *DatabaseProvider) CurrentUser(ctx context.Context) (uuid.UUID, bool, error) {
	var row SessionRow
	err := p.db.WithContext(ctx).Order("created_at desc").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}

	claims, err := p.tokens.validate(row.Token)
	if err != nil {
		if errors.Is(err, errTokenExpired) {
			p.logger.Info("Stored session token expired, signing out", zap.String("identityID", row.IdentityID.String()))
			if delErr := p.db.WithContext(ctx).Where("1 = 1").Delete(&SessionRow{}).Error; delErr != nil {
				p.logger.Error("Failed to purge expired session row", zap.Error(delErr))
			}
			p.events.publish(Event{Type: EventSignedOut, UserID: row.IdentityID})
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}

	return claims.UserID, true, nil
}

func (p *DatabaseProvider) OnSessionChange(fn func(Event)) (unsubscribe func()) {
	return p.events.subscribe(fn)
}

func (p *DatabaseProvider) GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, err := p.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.ToUser(), nil
}

func (p *DatabaseProvider) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return p.profiles.UpdateFields(ctx, id, fields)
}
