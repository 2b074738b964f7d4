// File: internal/provider/profile.go
package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"nujum_backend/internal/common"
	"nujum_backend/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRow is the stored profile. Column names are the remote schema names
// the field-mapping table targets, so partial updates can be applied as-is.
type ProfileRow struct {
	common.BaseModel
	// Username is nullable: a profile row exists before the signup flow
	// populates it, and NULLs never collide on the unique index.
	Username           *string `gorm:"column:username;type:varchar(100);uniqueIndex"`
	FullName           string  `gorm:"column:full_name;type:varchar(255)"`
	Email              string  `gorm:"column:email;type:varchar(255);uniqueIndex"`
	Phone              string  `gorm:"column:phone;type:varchar(50)"`
	ProfilePicture     *string `gorm:"column:profile_picture;type:text"`
	DisabilityType     string  `gorm:"column:disability_type;type:varchar(50)"`
	CountryOfResidence string  `gorm:"column:country_of_residence;type:varchar(100)"`
	Nationality        *string `gorm:"column:nationality;type:varchar(100)"`
	Gender             *string `gorm:"column:gender;type:varchar(50)"`
	DateOfBirth        *string `gorm:"column:date_of_birth;type:varchar(50)"`
	IsVerified         bool    `gorm:"column:is_verified;not null;default:false"`
	VerificationStatus string  `gorm:"column:verification_status;type:varchar(50);not null;default:'unverified'"`
	Bio                *string `gorm:"column:bio;type:text"`
	BloodGroup         *string `gorm:"column:blood_group;type:varchar(10)"`
	EmergencyContact   *string `gorm:"column:emergency_contact;type:varchar(255)"`
	FirebaseUID        *string `gorm:"column:firebase_uid;type:varchar(255);uniqueIndex"`
}

// TableName specifies the table name for the ProfileRow model.
func (ProfileRow) TableName() string {
	return "profiles"
}

// ToUser converts a stored profile row to the local user model.
func (r *ProfileRow) ToUser() *user.User {
	username := ""
	if r.Username != nil {
		username = *r.Username
	}
	return &user.User{
		ID:                 r.ID,
		Username:           username,
		FullName:           r.FullName,
		Email:              r.Email,
		Phone:              r.Phone,
		ProfilePicture:     r.ProfilePicture,
		DisabilityType:     user.DisabilityType(r.DisabilityType),
		CountryOfResidence: r.CountryOfResidence,
		Nationality:        r.Nationality,
		Gender:             r.Gender,
		DateOfBirth:        r.DateOfBirth,
		IsVerified:         r.IsVerified,
		VerificationStatus: user.VerificationStatus(r.VerificationStatus),
		Bio:                r.Bio,
		BloodGroup:         r.BloodGroup,
		EmergencyContact:   r.EmergencyContact,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// ProfileRepository persists profile rows for the hosted backends.
type ProfileRepository interface {
	Create(ctx context.Context, row *ProfileRow) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProfileRow, error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*ProfileRow, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type gormProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new GORM profile repository.
func NewGORMProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

func (r *gormProfileRepository) Create(ctx context.Context, row *ProfileRow) error {
	row.Email = strings.ToLower(strings.TrimSpace(row.Email))
	err := r.db.WithContext(ctx).Create(row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *gormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*ProfileRow, error) {
	var row ProfileRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *gormProfileRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*ProfileRow, error) {
	var row ProfileRow
	err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &row, nil
}

// UpdateFields applies a partial update. The map keys are remote column
// names, which are exactly this table's columns.
func (r *gormProfileRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&ProfileRow{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
