// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/storage"
)

func Initialize(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithField("host", cfg.Host).Info("Database connection established successfully")
	return db, nil
}

func RunMigrations(db *gorm.DB, table string, log logrus.FieldLogger) error {
	log.WithField("table", table).Info("Running database migrations...")

	if err := db.Table(table).AutoMigrate(&storage.Entry{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_updated_at ON %s(updated_at DESC)", table, table)
	if err := db.Exec(index).Error; err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// OpenStore returns the key-value store selected by cfg.Storage.Driver.
func OpenStore(cfg *config.Config, log logrus.FieldLogger) (storage.KVStore, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("Using in-memory storage; state is lost on exit")
		return storage.NewMemoryStore(), nil
	case "sqlite":
		store, err := storage.OpenSQLite(cfg.Storage.SQLitePath, cfg.Storage.Table)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.Storage.SQLitePath).Info("SQLite storage opened")
		return store, nil
	case "postgres":
		db, err := Initialize(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(db, cfg.Storage.Table, log); err != nil {
			Close(db, log)
			return nil, err
		}
		return storage.NewPostgresStore(db, cfg.Storage.Table), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func Close(db *gorm.DB, log logrus.FieldLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("Error closing database connection")
	} else {
		log.Info("Database connection closed successfully")
	}
}
