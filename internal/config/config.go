package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port" env:"PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	MaxUploadMB    int64    `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type" env:"DB_TYPE"`
	LogLevel string         `yaml:"log_level" env:"DB_LOG_LEVEL"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host" env:"MYSQL_HOST"`
	Port     int    `yaml:"port" env:"MYSQL_PORT"`
	User     string `yaml:"user" env:"MYSQL_USER"`
	Password string `yaml:"password" env:"MYSQL_PASSWORD"`
	Database string `yaml:"database" env:"MYSQL_DATABASE"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Database string `yaml:"database" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSLMODE"`
}

// SQLiteConfig contains the SQLite database file location
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"`
}

// StorageConfig contains Blob Store settings
type StorageConfig struct {
	Type           string   `yaml:"type" env:"STORAGE_TYPE"`
	ImageDirectory string   `yaml:"image_directory" env:"IMAGE_DIRECTORY"`
	PublicBaseURL  string   `yaml:"public_base_url" env:"IMAGE_BASE_URL"`
	S3             S3Config `yaml:"s3"`
}

// S3Config contains S3 bucket settings
type S3Config struct {
	Bucket   string `yaml:"bucket" env:"S3_BUCKET"`
	Region   string `yaml:"region" env:"S3_REGION"`
	Prefix   string `yaml:"prefix" env:"S3_PREFIX"`
	Endpoint string `yaml:"endpoint" env:"S3_ENDPOINT"`
}

// RateLimitConfig limits image uploads
type RateLimitConfig struct {
	Enabled          bool `yaml:"enabled" env:"UPLOAD_RATE_LIMIT_ENABLED"`
	UploadsPerMinute int  `yaml:"uploads_per_minute" env:"UPLOADS_PER_MINUTE"`
	UploadsPerHour   int  `yaml:"uploads_per_hour" env:"UPLOADS_PER_HOUR"`
}

// CleanupConfig controls the orphaned blob sweep
type CleanupConfig struct {
	Enabled       bool   `yaml:"enabled" env:"CLEANUP_ENABLED"`
	Schedule      string `yaml:"schedule" env:"CLEANUP_SCHEDULE"`
	MinAgeMinutes int    `yaml:"min_age_minutes" env:"CLEANUP_MIN_AGE_MINUTES"`
	DryRun        bool   `yaml:"dry_run" env:"CLEANUP_DRY_RUN"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Supported backends
const (
	DatabaseSQLite   = "sqlite"
	DatabaseMySQL    = "mysql"
	DatabasePostgres = "postgres"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8081",
			AllowedOrigins: []string{"http://localhost:4200", "http://localhost:8081"},
			MaxUploadMB:    10,
		},
		Database: DatabaseConfig{
			Type:     DatabaseSQLite,
			LogLevel: "warn",
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "properties",
				Database: "properties",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "properties",
				Database: "properties",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{Path: "data/properties.db"},
		},
		Storage: StorageConfig{
			Type:           StorageLocal,
			ImageDirectory: "uploads/images",
			PublicBaseURL:  "http://localhost:8081/images",
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			UploadsPerMinute: 30,
			UploadsPerHour:   600,
		},
		Cleanup: CleanupConfig{
			Enabled:       false,
			Schedule:      "0 3 * * *",
			MinAgeMinutes: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides on top of it
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "server.port is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		problems = append(problems, "server.allowed_origins must list at least one origin")
	}
	if c.Server.MaxUploadMB <= 0 {
		problems = append(problems, "server.max_upload_mb must be positive")
	}

	switch c.Database.Type {
	case DatabaseSQLite:
		if c.Database.SQLite.Path == "" {
			problems = append(problems, "database.sqlite.path is required")
		}
	case DatabaseMySQL:
		if c.Database.MySQL.Host == "" || c.Database.MySQL.Database == "" {
			problems = append(problems, "database.mysql.host and database.mysql.database are required")
		}
	case DatabasePostgres:
		if c.Database.Postgres.Host == "" || c.Database.Postgres.Database == "" {
			problems = append(problems, "database.postgres.host and database.postgres.database are required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown database.type %q", c.Database.Type))
	}

	switch c.Storage.Type {
	case StorageLocal:
		if c.Storage.ImageDirectory == "" {
			problems = append(problems, "storage.image_directory is required")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			problems = append(problems, "storage.s3.bucket is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage.type %q", c.Storage.Type))
	}
	if c.Storage.PublicBaseURL == "" {
		problems = append(problems, "storage.public_base_url is required")
	}

	if c.Cleanup.Enabled && c.Cleanup.Schedule == "" {
		problems = append(problems, "cleanup.schedule is required when cleanup is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *ServerConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// MinAge returns the minimum age of a blob before the sweep may remove it
func (c *CleanupConfig) MinAge() time.Duration {
	return time.Duration(c.MinAgeMinutes) * time.Minute
}
