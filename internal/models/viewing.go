package models

import "time"

// Viewing status values
const (
	ViewingScheduled = "예정"
	ViewingDone      = "완료"
)

// Viewing is an appointment at a property. StartAt and EndAt are kept as
// entered; unparseable values are tolerated.
type Viewing struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id" validate:"required"`
	CustomerID *uint     `gorm:"index" json:"customer_id"`
	StartAt    string    `gorm:"not null" json:"start_at" validate:"required"`
	EndAt      string    `gorm:"not null" json:"end_at" validate:"required"`
	Title      string    `json:"title" validate:"required"`
	Memo       string    `json:"memo"`
	Status     string    `gorm:"default:'예정'" json:"status" validate:"omitempty,oneof=예정 완료"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Viewing) TableName() string {
	return "viewings"
}

func (v *Viewing) Ref() EntityRef {
	return ViewingRef(v.ID)
}
