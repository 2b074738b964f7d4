// File: cmd/server/providers.go
package main

import (
	"fmt"
	"log"

	"nujum_backend/internal/config"
	"nujum_backend/internal/filestorage"
	"nujum_backend/internal/platform/database"
	"nujum_backend/internal/prefs"
	"nujum_backend/internal/provider"
	"nujum_backend/internal/signup"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDatabase opens the GORM connection and runs migrations. The memory
// backend runs without a database; everything downstream tolerates a nil DB.
// The returned cleanup closes the connection pool.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.AuthBackend == config.AuthBackendMemory {
		logger.Info("Memory auth backend selected; skipping database setup")
		return nil, func() {}, nil
	}
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Closing database connection...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	if err := provider.AutoMigrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrating identity tables: %w", err)
	}
	if err := prefs.AutoMigrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrating preference table: %w", err)
	}
	if err := signup.AutoMigrateDocuments(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrating document table: %w", err)
	}
	return db, cleanup, nil
}

// provideProvider selects the identity provider strategy for this
// deployment. Exactly one strategy is ever active; there is no per-call
// fallback between backends.
func provideProvider(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (provider.Provider, error) {
	switch cfg.AuthBackend {
	case config.AuthBackendMemory:
		return provider.NewMemoryProvider(), nil
	case config.AuthBackendDatabase:
		profiles := provider.NewGORMProfileRepository(db)
		return provider.NewDatabaseProvider(db, profiles, cfg, logger), nil
	case config.AuthBackendFirebase:
		profiles := provider.NewGORMProfileRepository(db)
		return provider.NewFirebaseProvider(cfg, profiles, logger)
	default:
		return nil, fmt.Errorf("unknown auth backend %q", cfg.AuthBackend)
	}
}

// providePrefsStore backs preferences with the database when one exists.
func providePrefsStore(db *gorm.DB) prefs.Store {
	if db == nil {
		return prefs.NewMemoryStore()
	}
	return prefs.NewGORMStore(db)
}

// provideDraftStore holds signup drafts in memory with the configured TTL.
func provideDraftStore(cfg *config.Config) signup.DraftStore {
	return signup.NewMemoryDraftStore(cfg.SignupDraftTTL)
}

// provideDocumentRepo is nil without a database; the pipeline then skips
// document metadata persistence.
func provideDocumentRepo(db *gorm.DB) signup.DocumentRepository {
	if db == nil {
		return nil
	}
	return signup.NewGormDocumentRepository(db)
}

// provideFileStorage roots document storage at the configured path.
func provideFileStorage(cfg *config.Config, logger *zap.Logger) (*filestorage.Service, error) {
	return filestorage.NewService(cfg.DocumentStoragePath, cfg.DocumentMaxSizeMB, logger.Named("FileStorage"))
}

// provideDefaultCountry extracts the signup default for the pipeline.
func provideDefaultCountry(cfg *config.Config) string {
	return cfg.DefaultCountryOfResidence
}
