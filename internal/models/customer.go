package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer request status values
const (
	CustomerStatusInquiry     = "문의"
	CustomerStatusActive      = "진행"
	CustomerStatusBooked      = "현장예약"
	CustomerStatusContracting = "계약진행"
	CustomerStatusContracted  = "계약완료"
	CustomerStatusOnHold      = "보류"
)

var CustomerStatuses = []string{
	CustomerStatusInquiry,
	CustomerStatusActive,
	CustomerStatusBooked,
	CustomerStatusContracting,
	CustomerStatusContracted,
	CustomerStatusOnHold,
}

// Size units accepted on a customer request.
const (
	SizeUnitSquareMeter = "㎡"
	SizeUnitPyeong      = "평"
)

// Customer is a buyer or renter's stated requirements.
type Customer struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CustomerName string `gorm:"not null" json:"customer_name" validate:"required"`
	Phone        string `json:"phone"`
	PreferredTab string `json:"preferred_tab"` // comma-joined tags
	DealType     string `json:"deal_type"`     // comma-joined 매매,전세,월세

	SizeValue       string `json:"size_value"`
	SizeUnit        string `json:"size_unit" validate:"omitempty,oneof=㎡ 평"`
	PreferredArea   string `json:"preferred_area"`   // "84" or "80~90"
	PreferredPyeong string `json:"preferred_pyeong"` // "25" or "24~26"

	Budget          string `json:"budget"` // display text
	Budget10m       int    `gorm:"column:budget_10m" json:"budget_10m" validate:"gte=0"`
	WolseDeposit10m int    `gorm:"column:wolse_deposit_10m" json:"wolse_deposit_10m" validate:"gte=0"`
	WolseRent10man  int    `gorm:"column:wolse_rent_10man" json:"wolse_rent_10man" validate:"gte=0"`

	MoveInPeriod        string `json:"move_in_period"`
	ViewPreference      string `json:"view_preference"`
	LocationPreference  string `json:"location_preference"`
	FloorPreference     string `json:"floor_preference"`
	ConditionPreference string `json:"condition_preference"`
	ExtraNeeds          string `json:"extra_needs"`

	Status string `gorm:"default:'진행';index" json:"status"`
	Hidden bool   `gorm:"index" json:"hidden"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customer_requests"
}

func (c *Customer) Deleted() bool {
	return c.DeletedAt.Valid
}

func (c *Customer) Ref() EntityRef {
	return CustomerRef(c.ID)
}

// ApplySize copies SizeValue into PreferredArea or PreferredPyeong
// according to SizeUnit.
func (c *Customer) ApplySize() {
	v := strings.TrimSpace(c.SizeValue)
	if v == "" {
		return
	}
	if c.SizeUnit == SizeUnitPyeong {
		c.PreferredPyeong = v
		return
	}
	c.PreferredArea = v
}

// PreferredTags splits PreferredTab.
func (c *Customer) PreferredTags() []string {
	return SplitList(c.PreferredTab)
}

// DealTypes parses DealType, keeping only known deal kinds.
func (c *Customer) DealTypes() []DealType {
	var out []DealType
	for _, tok := range SplitList(c.DealType) {
		switch d := DealType(tok); d {
		case DealSale, DealJeonse, DealWolse:
			out = append(out, d)
		}
	}
	return out
}

// SplitList splits a comma-joined list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
