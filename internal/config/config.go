// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported AUTH_BACKEND values.
const (
	AuthBackendMemory   = "memory"
	AuthBackendDatabase = "database"
	AuthBackendFirebase = "firebase"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"` // "postgres" or "sqlite"
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Identity provider backend. Exactly one backend is active per
	// deployment.
	AuthBackend string `mapstructure:"AUTH_BACKEND"`

	// Session tokens issued by the database backend.
	SessionTokenSecret string        `mapstructure:"SESSION_TOKEN_SECRET"`
	SessionTokenTTL    time.Duration `mapstructure:"SESSION_TOKEN_TTL_MINUTES"`

	// Signup pipeline
	SignupDraftTTL            time.Duration `mapstructure:"SIGNUP_DRAFT_TTL_MINUTES"`
	DraftExpiryJobSchedule    string        `mapstructure:"DRAFT_EXPIRY_JOB_SCHEDULE"`
	DocumentStoragePath       string        `mapstructure:"DOCUMENT_STORAGE_PATH"`
	DocumentMaxSizeMB         int           `mapstructure:"DOCUMENT_MAX_SIZE_MB"`
	DefaultCountryOfResidence string        `mapstructure:"DEFAULT_COUNTRY_OF_RESIDENCE"`

	// Firebase Configuration (only used when AUTH_BACKEND=firebase)
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey             string `mapstructure:"FIREBASE_WEB_API_KEY"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "nujum_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_SQLITE_PATH", "nujum.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("AUTH_BACKEND", "database")
	v.SetDefault("SESSION_TOKEN_SECRET", "")
	v.SetDefault("SESSION_TOKEN_TTL_MINUTES", 60*24)

	v.SetDefault("SIGNUP_DRAFT_TTL_MINUTES", 60)
	v.SetDefault("DRAFT_EXPIRY_JOB_SCHEDULE", "@every 15m")
	v.SetDefault("DOCUMENT_STORAGE_PATH", "./documents")
	v.SetDefault("DOCUMENT_MAX_SIZE_MB", 10)
	v.SetDefault("DEFAULT_COUNTRY_OF_RESIDENCE", "United Arab Emirates")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_WEB_API_KEY", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionTokenTTL = time.Duration(v.GetInt("SESSION_TOKEN_TTL_MINUTES")) * time.Minute
	cfg.SignupDraftTTL = time.Duration(v.GetInt("SIGNUP_DRAFT_TTL_MINUTES")) * time.Minute

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthBackend {
	case AuthBackendMemory, AuthBackendDatabase:
	case AuthBackendFirebase:
		if c.FirebaseServiceAccountKeyPath == "" {
			return fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_KEY_PATH is required when AUTH_BACKEND=firebase")
		}
		if c.FirebaseWebAPIKey == "" {
			return fmt.Errorf("FIREBASE_WEB_API_KEY is required when AUTH_BACKEND=firebase")
		}
	default:
		return fmt.Errorf("unsupported AUTH_BACKEND %q (expected memory, database or firebase)", c.AuthBackend)
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", c.DBDriver)
	}

	if c.AuthBackend == AuthBackendDatabase && c.SessionTokenSecret == "" {
		return fmt.Errorf("SESSION_TOKEN_SECRET is required when AUTH_BACKEND=database")
	}
	return nil
}
