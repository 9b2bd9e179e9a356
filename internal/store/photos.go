package store

import (
	"context"

	"github.com/xelth-com/brokerledger/internal/models"
)

func (s *Store) AddPhoto(ctx context.Context, p *models.Photo) error {
	return create(ctx, s.db, models.EntityTypePhoto, models.AuditAdd, p, func() uint { return p.ID })
}

func (s *Store) ListPhotos(ctx context.Context, propertyID uint) ([]models.Photo, error) {
	var out []models.Photo
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("id ASC").Find(&out).Error
	return out, err
}

func (s *Store) ListAllPhotos(ctx context.Context) ([]models.Photo, error) {
	var out []models.Photo
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// DeletePhoto removes the row only; the image file is left in place.
func (s *Store) DeletePhoto(ctx context.Context, id uint) error {
	return remove[models.Photo](ctx, s.db, models.EntityTypePhoto, id)
}
