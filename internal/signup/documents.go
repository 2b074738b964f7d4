// File: internal/signup/documents.go
package signup

import (
	"context"
	"fmt"

	"nujum_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentRecord is the durable metadata row written for each verification
// document once signup completes. The file itself lives on disk under the
// document storage path.
type DocumentRecord struct {
	common.BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Category    string    `gorm:"type:varchar(50);not null"`
	FileName    string    `gorm:"type:varchar(255)"`
	StoragePath string    `gorm:"type:varchar(512)"`
	Placeholder bool      `gorm:"not null;default:false"`
	Status      string    `gorm:"type:varchar(20);not null"`
}

// TableName specifies the table name for GORM.
func (DocumentRecord) TableName() string {
	return "verification_documents"
}

// DocumentRepository persists verification-document metadata.
type DocumentRepository interface {
	CreateBatch(ctx context.Context, records []*DocumentRecord) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*DocumentRecord, error)
}

type gormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a GORM-backed DocumentRepository.
func NewGormDocumentRepository(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: db}
}

func (r *gormDocumentRepository) CreateBatch(ctx context.Context, records []*DocumentRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(records).Error; err != nil {
		return fmt.Errorf("creating verification document records: %w", err)
	}
	return nil
}

func (r *gormDocumentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*DocumentRecord, error) {
	var records []*DocumentRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("finding verification documents for user %s: %w", userID, err)
	}
	return records, nil
}

// AutoMigrateDocuments creates the verification-document table.
func AutoMigrateDocuments(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRecord{})
}
