// internal/storage/postgres.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of the key/value table.
type Entry struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// PostgresStore keeps values in a gorm-managed table.
type PostgresStore struct {
	db    *gorm.DB
	table string
}

// NewPostgresStore wraps an open connection. The table must already exist,
// see database.RunMigrations.
func NewPostgresStore(db *gorm.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

func (p *PostgresStore) tx(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ensureContext(ctx)).Table(p.table)
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	if err := p.tx(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := p.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := p.tx(ctx).Where("key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := p.tx(ctx).
		Where("substr(key, 1, ?) = ?", len(prefix), prefix).
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
