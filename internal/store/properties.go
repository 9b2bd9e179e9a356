package store

import (
	"context"

	"github.com/xelth-com/brokerledger/internal/models"
	"gorm.io/gorm"
)

// PropertyFilter narrows ListProperties.
type PropertyFilter struct {
	Tag            string
	IncludeHidden  bool
	IncludeDeleted bool
}

func (s *Store) AddProperty(ctx context.Context, p *models.Property) error {
	if p.Status == "" {
		p.Status = models.PropertyStatusNew
	}
	return create(ctx, s.db, models.EntityTypeProperty, models.AuditCreate, p, func() uint { return p.ID })
}

// UpdateProperty overwrites every editable field of p.ID.
func (s *Store) UpdateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	return mutate(ctx, s.db, models.EntityTypeProperty, p.ID, models.AuditUpdate, func(tx *gorm.DB, cur *models.Property) error {
		p.CreatedAt = cur.CreatedAt
		p.DeletedAt = cur.DeletedAt
		p.Hidden = cur.Hidden
		return tx.Unscoped().Save(p).Error
	})
}

func (s *Store) GetProperty(ctx context.Context, id uint, includeDeleted bool) (*models.Property, error) {
	db := s.db
	if includeDeleted {
		db = db.Unscoped()
	}
	return get[models.Property](ctx, db, id)
}

// ListProperties orders visible rows first, then most recently updated.
func (s *Store) ListProperties(ctx context.Context, f PropertyFilter) ([]models.Property, error) {
	q := s.db.WithContext(ctx)
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if f.Tag != "" {
		q = q.Where("tab = ?", f.Tag)
	}
	if !f.IncludeHidden {
		q = q.Where("hidden = ?", false)
	}
	var out []models.Property
	err := q.Order("hidden ASC, updated_at DESC, created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// ListVisibleProperties returns every non-deleted property, hidden ones
// included. Callers decide what hidden means for them.
func (s *Store) ListVisibleProperties(ctx context.Context) ([]models.Property, error) {
	var out []models.Property
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (s *Store) ToggleHiddenProperty(ctx context.Context, id uint) (*models.Property, error) {
	return mutate(ctx, s.db, models.EntityTypeProperty, id, models.AuditToggleHidden, func(tx *gorm.DB, p *models.Property) error {
		return tx.Unscoped().Model(p).Update("hidden", !p.Hidden).Error
	})
}

func (s *Store) SetPropertyStatus(ctx context.Context, id uint, status string) (*models.Property, error) {
	return mutate(ctx, s.db, models.EntityTypeProperty, id, models.AuditStatusUpdate, func(tx *gorm.DB, p *models.Property) error {
		return tx.Unscoped().Model(p).Update("status", status).Error
	})
}

func (s *Store) SoftDeleteProperty(ctx context.Context, id uint) error {
	_, err := mutate(ctx, s.db, models.EntityTypeProperty, id, models.AuditSoftDelete, func(tx *gorm.DB, p *models.Property) error {
		if p.Deleted() {
			return nil
		}
		return tx.Delete(p).Error
	})
	return err
}

func (s *Store) RestoreProperty(ctx context.Context, id uint) (*models.Property, error) {
	return mutate(ctx, s.db, models.EntityTypeProperty, id, models.AuditRestore, func(tx *gorm.DB, p *models.Property) error {
		return tx.Unscoped().Model(p).Update("deleted_at", nil).Error
	})
}
