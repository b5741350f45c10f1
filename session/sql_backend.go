package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// sqlEntry is one persisted key of the session.
type sqlEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:128"`
	Value     string `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time
}

func (sqlEntry) TableName() string {
	return "session_entries"
}

// SQLBackend persists session keys through GORM. It is the default on-disk
// store of the terminal client (SQLite), but any GORM dialect works.
type SQLBackend struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) a SQLite database at path and
// migrates the session table.
func OpenSQLite(path string) (*SQLBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", ErrBackendUnavailable, path, err)
	}
	return NewSQLBackend(db)
}

// NewSQLBackend wraps an existing connection and migrates the session table.
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if db == nil {
		return nil, errors.New("nil gorm db")
	}
	if err := db.AutoMigrate(&sqlEntry{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrBackendUnavailable, err)
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var e sqlEntry
	err := b.db.WithContext(ctx).Where("entry_key = ?", key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return e.Value, true, nil
}

func (b *SQLBackend) SetAll(ctx context.Context, entries map[string]string) error {
	now := time.Now()
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range entries {
			row := sqlEntry{Key: k, Value: v, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := b.db.WithContext(ctx).Where("entry_key IN ?", keys).Delete(&sqlEntry{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
