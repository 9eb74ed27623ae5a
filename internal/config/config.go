// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Blob        BlobConfig
	AWS         AWSConfig
	Session     SessionConfig
	Market      MarketConfig
	Log         LogConfig
	CORS        CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// StorageConfig selects the key-value store holding the collections.
type StorageConfig struct {
	Driver     string // memory|sqlite|postgres
	SQLitePath string
	Table      string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

// BlobConfig selects where uploaded audio payloads live.
type BlobConfig struct {
	Driver   string // memory|local|s3
	LocalDir string
	MaxSize  int64 // in bytes
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Prefix        string
}

type SessionConfig struct {
	SecretKey string
	TTLHours  int
}

// MarketConfig holds wallet grants, playback tuning and bootstrap sources.
type MarketConfig struct {
	StarterRub           int64
	StarterUsd           int64
	PlayThresholdSeconds float64
	DefaultVolume        float64
	ManifestSource       string
	BcryptCost           int
	SeedDemoData         bool
}

type LogConfig struct {
	Level  string
	Format string // text|json
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
			SQLitePath: getEnv("STORAGE_SQLITE_PATH", "./data/beatmarket.db"),
			Table:      getEnv("STORAGE_TABLE", "kv_entries"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "beatmarket"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Blob: BlobConfig{
			Driver:   strings.ToLower(getEnv("BLOB_DRIVER", "local")),
			LocalDir: getEnv("BLOB_LOCAL_DIR", "./data/audio"),
			MaxSize:  int64(getEnvAsInt("BLOB_MAX_SIZE_MB", 100)) * 1024 * 1024,
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "beatmarket-audio"),
			S3Prefix:        getEnv("AWS_S3_PREFIX", "beats"),
		},
		Session: SessionConfig{
			SecretKey: getEnv("SESSION_SECRET", defaultSessionSecret),
			TTLHours:  getEnvAsInt("SESSION_TTL_HOURS", 24*30),
		},
		Market: MarketConfig{
			StarterRub:           int64(getEnvAsInt("MARKET_STARTER_RUB", 10000)),
			StarterUsd:           int64(getEnvAsInt("MARKET_STARTER_USD", 100)),
			PlayThresholdSeconds: getEnvAsFloat("MARKET_PLAY_THRESHOLD_SECONDS", 30),
			DefaultVolume:        getEnvAsFloat("MARKET_DEFAULT_VOLUME", 0.7),
			ManifestSource:       getEnv("MARKET_MANIFEST", "./public/audio/manifest.json"),
			BcryptCost:           getEnvAsInt("MARKET_BCRYPT_COST", 10),
			SeedDemoData:         getEnvAsBool("MARKET_SEED_DEMO_DATA", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Session.SecretKey == defaultSessionSecret && c.Environment == "production" {
		return fmt.Errorf("session secret key must be changed in production")
	}

	if c.Storage.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Blob.Driver {
	case "memory", "local", "s3":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}

	if c.Market.PlayThresholdSeconds <= 0 {
		return fmt.Errorf("play threshold must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
