// File: internal/provider/firebase.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"nujum_backend/internal/config"
	"nujum_backend/internal/user"
)

const identityToolkitSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// FirebaseProvider pairs Firebase identities with local profile rows: the
// Admin SDK manages credentials, password sign-in goes through the Identity
// Toolkit REST endpoint, and the extended profile lives in the profiles
// table keyed by a local id.
type FirebaseProvider struct {
	authClient *firebaseauth.Client
	httpClient *http.Client
	webAPIKey  string
	profiles   ProfileRepository
	events     *broadcaster
	logger     *zap.Logger

	mu        sync.Mutex
	currentID *uuid.UUID
}

// NewFirebaseProvider initializes the Firebase Admin SDK and creates the
// AUTH_BACKEND=firebase strategy.
func NewFirebaseProvider(cfg *config.Config, profiles ProfileRepository, logger *zap.Logger) (*FirebaseProvider, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error
	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// Let the SDK infer the project from the credentials file.
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseProvider{
		authClient: authClient,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		webAPIKey:  cfg.FirebaseWebAPIKey,
		profiles:   profiles,
		events:     newBroadcaster(),
		logger:     logger.Named("FirebaseProvider"),
	}, nil
}

var _ Provider = (*FirebaseProvider)(nil)

type signInWithPasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInWithPasswordResponse struct {
	LocalID string `json:"localId"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) error {
	body, err := json.Marshal(signInWithPasswordRequest{
		Email:             normalizeEmail(email),
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s?key=%s", identityToolkitSignInURL, p.webAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity toolkit sign-in call failed: %w", err)
	}
	defer res.Body.Close()

	var parsed signInWithPasswordResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to parse identity toolkit response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			switch parsed.Error.Message {
			case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
				return ErrInvalidCredentials
			}
			return fmt.Errorf("identity toolkit sign-in rejected: %s", parsed.Error.Message)
		}
		return fmt.Errorf("identity toolkit sign-in returned status %d", res.StatusCode)
	}

	row, err := p.profiles.FindByFirebaseUID(ctx, parsed.LocalID)
	if err != nil {
		return fmt.Errorf("signed in but no local profile for firebase uid %s: %w", parsed.LocalID, err)
	}

	p.mu.Lock()
	id := row.ID
	p.currentID = &id
	p.mu.Unlock()

	p.events.publish(Event{Type: EventSignedIn, UserID: row.ID})
	return nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	normalized := normalizeEmail(email)

	params := (&firebaseauth.UserToCreate{}).Email(normalized).Password(password)
	record, err := p.authClient.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return uuid.Nil, ErrEmailTaken
		}
		p.logger.Error("Failed to create Firebase user", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to create firebase user: %w", err)
	}

	firebaseUID := record.UID
	profile := &ProfileRow{
		Email:              normalized,
		VerificationStatus: string(user.VerificationPending),
		FirebaseUID:        &firebaseUID,
	}
	if err := p.profiles.Create(ctx, profile); err != nil {
		return uuid.Nil, err
	}

	return profile.ID, nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.currentID
	p.currentID = nil
	p.mu.Unlock()

	if current == nil {
		return nil
	}

	var revokeErr error
	if row, err := p.profiles.FindByID(ctx, *current); err == nil && row.FirebaseUID != nil {
		if err := p.authClient.RevokeRefreshTokens(ctx, *row.FirebaseUID); err != nil {
			p.logger.Error("Failed to revoke Firebase refresh tokens", zap.Error(err))
			revokeErr = fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
	}

	p.events.publish(Event{Type: EventSignedOut, UserID: *current})
	return revokeErr
}

func (p *FirebaseProvider) CurrentUser(ctx context.Context) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentID == nil {
		return uuid.Nil, false, nil
	}
	return *p.currentID, true, nil
}

func (p *FirebaseProvider) OnSessionChange(fn func(Event)) (unsubscribe func()) {
	return p.events.subscribe(fn)
}

func (p *FirebaseProvider) GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, err := p.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.ToUser(), nil
}

func (p *FirebaseProvider) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return p.profiles.UpdateFields(ctx, id, fields)
}
