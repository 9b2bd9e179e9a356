package store

import (
	"context"

	"github.com/xelth-com/brokerledger/internal/models"
	"gorm.io/gorm"
)

// CustomerFilter narrows ListCustomers.
type CustomerFilter struct {
	IncludeHidden  bool
	IncludeDeleted bool
}

func (s *Store) AddCustomer(ctx context.Context, c *models.Customer) error {
	if c.Status == "" {
		c.Status = models.CustomerStatusActive
	}
	c.ApplySize()
	return create(ctx, s.db, models.EntityTypeCustomer, models.AuditCreate, c, func() uint { return c.ID })
}

func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	c.ApplySize()
	return mutate(ctx, s.db, models.EntityTypeCustomer, c.ID, models.AuditUpdate, func(tx *gorm.DB, cur *models.Customer) error {
		c.CreatedAt = cur.CreatedAt
		c.DeletedAt = cur.DeletedAt
		c.Hidden = cur.Hidden
		return tx.Unscoped().Save(c).Error
	})
}

func (s *Store) GetCustomer(ctx context.Context, id uint, includeDeleted bool) (*models.Customer, error) {
	db := s.db
	if includeDeleted {
		db = db.Unscoped()
	}
	return get[models.Customer](ctx, db, id)
}

func (s *Store) ListCustomers(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	q := s.db.WithContext(ctx)
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if !f.IncludeHidden {
		q = q.Where("hidden = ?", false)
	}
	var out []models.Customer
	err := q.Order("hidden ASC, updated_at DESC, created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *Store) ToggleHiddenCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return mutate(ctx, s.db, models.EntityTypeCustomer, id, models.AuditToggleHidden, func(tx *gorm.DB, c *models.Customer) error {
		return tx.Unscoped().Model(c).Update("hidden", !c.Hidden).Error
	})
}

func (s *Store) SetCustomerStatus(ctx context.Context, id uint, status string) (*models.Customer, error) {
	return mutate(ctx, s.db, models.EntityTypeCustomer, id, models.AuditStatusUpdate, func(tx *gorm.DB, c *models.Customer) error {
		return tx.Unscoped().Model(c).Update("status", status).Error
	})
}

func (s *Store) SoftDeleteCustomer(ctx context.Context, id uint) error {
	_, err := mutate(ctx, s.db, models.EntityTypeCustomer, id, models.AuditSoftDelete, func(tx *gorm.DB, c *models.Customer) error {
		if c.Deleted() {
			return nil
		}
		return tx.Delete(c).Error
	})
	return err
}

func (s *Store) RestoreCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return mutate(ctx, s.db, models.EntityTypeCustomer, id, models.AuditRestore, func(tx *gorm.DB, c *models.Customer) error {
		return tx.Unscoped().Model(c).Update("deleted_at", nil).Error
	})
}
