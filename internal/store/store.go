// Package store is the record store: typed CRUD over gorm with soft delete,
// hide toggling, an audit trail and idempotent task upserts.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("record not found")

// Store persists ledger records.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{db: db, log: log}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AllModels lists every persisted record type.
func AllModels() []interface{} {
	return []interface{}{
		&models.Property{},
		&models.Customer{},
		&models.Photo{},
		&models.Viewing{},
		&models.Task{},
		&models.AuditLog{},
	}
}

// Migrate synchronizes the schema and rewrites legacy values.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for oldTag, newTag := range models.LegacyTagMap {
		if err := db.Unscoped().Model(&models.Property{}).Where("tab = ?", oldTag).Update("tab", newTag).Error; err != nil {
			return fmt.Errorf("rename legacy tag %q: %w", oldTag, err)
		}
		if err := db.Unscoped().Model(&models.Customer{}).Where("preferred_tab = ?", oldTag).Update("preferred_tab", newTag).Error; err != nil {
			return fmt.Errorf("rename legacy preferred tag %q: %w", oldTag, err)
		}
	}

	// Rows written before the origin column existed are recognised by kind.
	res := db.Model(&models.Task{}).
		Where("kind LIKE ? AND unique_key IS NOT NULL AND origin <> ?", "AUTO_%", models.OriginAuto).
		Update("origin", models.OriginAuto)
	if res.Error != nil {
		return fmt.Errorf("backfill task origin: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.log.Info("backfilled auto task origin", "rows", res.RowsAffected)
	}
	return nil
}

// ListAuditLog returns the audit entries for one entity, oldest first.
func (s *Store) ListAuditLog(ctx context.Context, entityType string, id uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, id).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func snapshot(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func writeAudit(tx *gorm.DB, entityType string, id uint, action string, before, after datatypes.JSON) error {
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   id,
		Action:     action,
		Before:     before,
		After:      after,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}

// create inserts rec and records a CREATE/ADD audit entry.
func create[T any](ctx context.Context, db *gorm.DB, entityType, action string, rec *T, id func() uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return writeAudit(tx, entityType, id(), action, nil, snapshot(rec))
	})
}

// mutate loads record id (deleted rows included), applies fn and records
// the before/after snapshots under action. fn receives the scoped handle.
func mutate[T any](ctx context.Context, db *gorm.DB, entityType string, id uint, action string, fn func(tx *gorm.DB, rec *T) error) (*T, error) {
	var after T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec T
		if err := tx.Unscoped().First(&rec, id).Error; err != nil {
			return notFound(err)
		}
		before := snapshot(&rec)
		if err := fn(tx, &rec); err != nil {
			return err
		}
		if err := tx.Unscoped().First(&after, id).Error; err != nil {
			return err
		}
		return writeAudit(tx, entityType, id, action, before, snapshot(&after))
	})
	if err != nil {
		return nil, err
	}
	return &after, nil
}

// remove hard-deletes record id.
func remove[T any](ctx context.Context, db *gorm.DB, entityType string, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec T
		if err := tx.First(&rec, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return err
		}
		return writeAudit(tx, entityType, id, models.AuditDelete, snapshot(&rec), nil)
	})
}

func get[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var rec T
	if err := db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}
