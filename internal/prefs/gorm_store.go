// File: internal/prefs/gorm_store.go
package prefs

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRow is a stored preference key/value pair.
type PreferenceRow struct {
	Key       string    `gorm:"column:key;type:varchar(100);primary_key"`
	Value     string    `gorm:"column:value;type:varchar(255);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the PreferenceRow model.
func (PreferenceRow) TableName() string {
	return "preferences"
}

// GORMStore persists preferences as key/value rows.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a database-backed preference store.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

var _ Store = (*GORMStore)(nil)

func (s *GORMStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row PreferenceRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Value, true, nil
}

func (s *GORMStore) Set(ctx context.Context, key, value string) error {
	row := PreferenceRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// AutoMigrate creates the preferences table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PreferenceRow{})
}
