package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one row of the promptarena_kv table.
type kvEntry struct {
	Name      string `gorm:"primaryKey;size:128"`
	Owner     string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "promptarena_kv" }

// PostgresBackend stores blobs in a shared Postgres table, partitioned by
// owner so several players can point at the same database.
type PostgresBackend struct {
	db      *gorm.DB
	owner   string
	timeout time.Duration
}

// OpenPostgres connects to dsn and migrates the kv table.
func OpenPostgres(dsn, owner string) (*PostgresBackend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewPostgresBackend(db, owner)
}

// NewPostgresBackend wraps an open gorm handle.
func NewPostgresBackend(db *gorm.DB, owner string) (*PostgresBackend, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrating kv table: %w", err)
	}
	if owner == "" {
		owner = "default"
	}
	return &PostgresBackend{db: db, owner: owner, timeout: 5 * time.Second}, nil
}

func (b *PostgresBackend) tx() (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	return b.db.WithContext(ctx), cancel
}

func (b *PostgresBackend) Read(key string) ([]byte, error) {
	db, cancel := b.tx()
	defer cancel()
	var row kvEntry
	err := db.Where("name = ? AND owner = ?", key, b.owner).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Value), nil
}

func (b *PostgresBackend) Write(key string, data []byte) error {
	db, cancel := b.tx()
	defer cancel()
	row := kvEntry{Name: key, Owner: b.owner, Value: string(data), UpdatedAt: time.Now().UTC()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (b *PostgresBackend) Delete(key string) error {
	db, cancel := b.tx()
	defer cancel()
	res := db.Where("name = ? AND owner = ?", key, b.owner).Delete(&kvEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *PostgresBackend) List() ([]string, error) {
	db, cancel := b.tx()
	defer cancel()
	var keys []string
	err := db.Model(&kvEntry{}).Where("owner = ?", b.owner).Pluck("name", &keys).Error
	return keys, err
}

func (b *PostgresBackend) Clear() error {
	db, cancel := b.tx()
	defer cancel()
	return db.Where("owner = ?", b.owner).Delete(&kvEntry{}).Error
}
