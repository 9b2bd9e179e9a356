package models

import "time"

// Photo room tags in presentation priority order.
var PhotoTagPriority = []string{"거실", "안방", "작은방", "화장실", "주방"}

// Photo belongs to exactly one property. Deleting the row leaves the file alone.
type Photo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id" validate:"required"`
	FilePath   string    `gorm:"not null" json:"file_path" validate:"required"`
	Tag        string    `json:"tag"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Photo) TableName() string {
	return "photos"
}
