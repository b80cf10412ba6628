package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all engine configuration.
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Extract  ExtractConfig
}

// DatabaseConfig holds repository-related configuration.
type DatabaseConfig struct {
	Driver           string // "pgx" or "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig selects and tunes the OCR backend. The backend choice is
// configuration, not a behavioral branch: both engines satisfy the same
// text-out contract.
type OCRConfig struct {
	Backend     string // "vision" or "tesseract"
	Language    string // tesseract language pack, e.g. "spa"
	Credentials string // path to Google service account JSON, optional
	Timeout     time.Duration
}

// ExtractConfig holds extraction-engine configuration.
type ExtractConfig struct {
	// ImageOutputDir is where recovered PDF images are written when the
	// caller does not supply a folder. The default is an explicit policy,
	// not a guess: a subdirectory of the OS temp dir.
	ImageOutputDir string
}

// LoadDotenv loads a .env file if present. Missing files are not an error.
func LoadDotenv() {
	_ = godotenv.Load()
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "pgx"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		OCR: OCRConfig{
			Backend:     getEnv("OCR_BACKEND", "tesseract"),
			Language:    getEnv("OCR_LANGUAGE", "spa"),
			Credentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 45*time.Second),
		},
		Extract: ExtractConfig{
			ImageOutputDir: getEnv("IMAGE_OUTPUT_DIR", filepath.Join(os.TempDir(), "docextract")),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	switch c.OCR.Backend {
	case "vision", "tesseract":
	default:
		return NewAppError("CONFIG_ERROR", "OCR_BACKEND must be 'vision' or 'tesseract'", ErrInvalidInput)
	}
	if c.Database.DSN == "" && c.Database.Driver == "pgx" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required for the pgx driver", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
