// File: internal/platform/database/gorm.go
package database

import (
	"fmt"
	"log" // Standard log for critical connection errors
	"time"

	"nujum_backend/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGORM creates a new GORM database instance for the configured driver.
// The sqlite driver is intended for local development and tests; postgres
// is the production driver.
func NewGORM(cfg *config.Config) (*gorm.DB, error) {
	var gormLogLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case "silent", "fatal", "panic":
		gormLogLevel = gormlogger.Silent
	case "error":
		gormLogLevel = gormlogger.Error
	case "warn", "warning":
		gormLogLevel = gormlogger.Warn
	case "info", "debug": // For info and debug, GORM will log all SQL
		gormLogLevel = gormlogger.Info
	default:
		gormLogLevel = gormlogger.Warn
	}

	newLogger := gormlogger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.GinMode != "release",
		},
	)

	gormConfig := &gorm.Config{
		Logger:      newLogger,
		PrepareStmt: true,
	}

	var db *gorm.DB
	var err error
	switch cfg.DBDriver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DBSQLitePath), gormConfig)
	default:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
			cfg.DBTimezone,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return db, nil
}

// CloseGORMDB closes the underlying connection pool.
func CloseGORMDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("ERROR: Failed to close database connection: %v", err)
		}
	}
}
