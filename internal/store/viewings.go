package store

import (
	"context"

	"github.com/xelth-com/brokerledger/internal/models"
	"gorm.io/gorm"
)

// ViewingFilter narrows ListViewings. Zero ids match everything.
type ViewingFilter struct {
	PropertyID uint
	CustomerID uint
}

func (s *Store) AddViewing(ctx context.Context, v *models.Viewing) error {
	if v.Status == "" {
		v.Status = models.ViewingScheduled
	}
	return create(ctx, s.db, models.EntityTypeViewing, models.AuditCreate, v, func() uint { return v.ID })
}

func (s *Store) GetViewing(ctx context.Context, id uint) (*models.Viewing, error) {
	return get[models.Viewing](ctx, s.db, id)
}

// ListViewings returns the latest appointments first.
func (s *Store) ListViewings(ctx context.Context, f ViewingFilter) ([]models.Viewing, error) {
	q := s.db.WithContext(ctx)
	if f.PropertyID != 0 {
		q = q.Where("property_id = ?", f.PropertyID)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	var out []models.Viewing
	err := q.Order("start_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *Store) ListAllViewings(ctx context.Context) ([]models.Viewing, error) {
	var out []models.Viewing
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (s *Store) UpdateViewingStatus(ctx context.Context, id uint, status string) (*models.Viewing, error) {
	return mutate(ctx, s.db, models.EntityTypeViewing, id, models.AuditStatusUpdate, func(tx *gorm.DB, v *models.Viewing) error {
		return tx.Model(v).Update("status", status).Error
	})
}

func (s *Store) UpdateViewingMemo(ctx context.Context, id uint, memo string) (*models.Viewing, error) {
	return mutate(ctx, s.db, models.EntityTypeViewing, id, models.AuditMemoUpdate, func(tx *gorm.DB, v *models.Viewing) error {
		return tx.Model(v).Update("memo", memo).Error
	})
}

func (s *Store) DeleteViewing(ctx context.Context, id uint) error {
	return remove[models.Viewing](ctx, s.db, models.EntityTypeViewing, id)
}
