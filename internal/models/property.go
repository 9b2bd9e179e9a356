package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/xelth-com/brokerledger/internal/money"
	"gorm.io/gorm"
)

// Property workflow status values
const (
	PropertyStatusNew          = "신규등록"
	PropertyStatusNeedsPhoto   = "사진필요"
	PropertyStatusPhotoChecked = "사진확인"
	PropertyStatusAdvertising  = "광고중"
	PropertyStatusContracting  = "계약진행"
	PropertyStatusClosed       = "거래완료"
)

// PropertyStatuses lists the workflow labels in display order.
var PropertyStatuses = []string{
	PropertyStatusNew,
	PropertyStatusNeedsPhoto,
	PropertyStatusPhotoChecked,
	PropertyStatusAdvertising,
	PropertyStatusContracting,
	PropertyStatusClosed,
}

// Grouping tags. The two apartment complexes carry a unit layout master.
const (
	TagComplexXi    = "봉담자이 프라이드시티"
	TagComplexHills = "힐스테이트봉담프라이드시티"
	TagShop         = "상가"
	TagHouse        = "단독주택"
)

var PropertyTags = []string{TagComplexXi, TagComplexHills, TagShop, TagHouse}

// LegacyTagMap renames tag values written by older versions.
var LegacyTagMap = map[string]string{
	"아파트단지1": TagComplexXi,
	"아파트단지2": TagComplexHills,
}

// DealType is one of the three combinable deal kinds.
type DealType string

const (
	DealSale   DealType = "매매"
	DealJeonse DealType = "전세"
	DealWolse  DealType = "월세"
)

// Property is a listed unit of real estate.
type Property struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	Tag           string   `gorm:"column:tab;not null;index" json:"tab" validate:"required"`
	ComplexName   string   `json:"complex_name"`
	UnitType      string   `json:"unit_type"`
	Area          *float64 `json:"area" validate:"omitempty,gte=0"`   // ㎡
	Pyeong        *float64 `json:"pyeong" validate:"omitempty,gte=0"` // 평
	Dong          string   `json:"dong"`
	Ho            string   `json:"ho"`
	AddressDetail string   `json:"address_detail"`
	Floor         string   `json:"floor"`
	TotalFloor    string   `json:"total_floor"`
	View          string   `json:"view"`
	Orientation   string   `json:"orientation"`
	Condition     string   `json:"condition" validate:"omitempty,oneof=상 중 하"`
	RepairNeeded  bool     `json:"repair_needed"`
	TenantInfo    string   `json:"tenant_info"`
	NaverLink     string   `json:"naver_link"`
	SpecialNotes  string   `json:"special_notes"`
	Note          string   `json:"note"`

	DealSale        bool `json:"deal_sale"`
	DealJeonse      bool `json:"deal_jeonse"`
	DealWolse       bool `json:"deal_wolse"`
	PriceSaleEok    int  `json:"price_sale_eok" validate:"gte=0"`
	PriceSaleChe    int  `json:"price_sale_che" validate:"gte=0"`
	PriceJeonseEok  int  `json:"price_jeonse_eok" validate:"gte=0"`
	PriceJeonseChe  int  `json:"price_jeonse_che" validate:"gte=0"`
	WolseDepositEok int  `json:"wolse_deposit_eok" validate:"gte=0"`
	WolseDepositChe int  `json:"wolse_deposit_che" validate:"gte=0"`
	WolseRentMan    int  `json:"wolse_rent_man" validate:"gte=0"` // 만원

	Status string `gorm:"default:'신규등록';index" json:"status"`
	Hidden bool   `gorm:"index" json:"hidden"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Property) TableName() string {
	return "properties"
}

// Deleted reports whether the property is soft-deleted.
func (p *Property) Deleted() bool {
	return p.DeletedAt.Valid
}

// Ref returns the entity reference for this property.
func (p *Property) Ref() EntityRef {
	return PropertyRef(p.ID)
}

// DealTypes returns the offered deal kinds in canonical order.
func (p *Property) DealTypes() []DealType {
	var out []DealType
	if p.DealSale {
		out = append(out, DealSale)
	}
	if p.DealJeonse {
		out = append(out, DealJeonse)
	}
	if p.DealWolse {
		out = append(out, DealWolse)
	}
	return out
}

// SalePrice is the sale price in 10-million-won units.
func (p *Property) SalePrice() int {
	return money.EokCheToTenMillion(p.PriceSaleEok, p.PriceSaleChe)
}

// JeonsePrice is the jeonse deposit in 10-million-won units.
func (p *Property) JeonsePrice() int {
	return money.EokCheToTenMillion(p.PriceJeonseEok, p.PriceJeonseChe)
}

// WolseDeposit is the monthly-rent deposit in 10-million-won units.
func (p *Property) WolseDeposit() int {
	return money.EokCheToTenMillion(p.WolseDepositEok, p.WolseDepositChe)
}

// WolseRent is the monthly rent in 10-man-won units.
func (p *Property) WolseRent() int {
	return money.ManToTenMan(p.WolseRentMan)
}

// Label renders a short human label: complex + dong/ho (or address),
// followed by unit type and pyeong when known.
func (p *Property) Label() string {
	complex := strings.TrimSpace(p.ComplexName)
	dong, ho := strings.TrimSpace(p.Dong), strings.TrimSpace(p.Ho)
	addr := strings.TrimSpace(p.AddressDetail)

	var label string
	switch {
	case dong != "" && ho != "":
		label = strings.TrimSpace(complex + " " + withSuffix(dong, "동") + " " + withSuffix(ho, "호"))
	case complex != "" && addr != "":
		label = complex + " " + addr
	case complex != "":
		label = complex
	case addr != "":
		label = addr
	default:
		label = "매물"
	}

	if unit := strings.TrimSpace(p.UnitType); unit != "" {
		if p.Pyeong != nil {
			label += fmt.Sprintf(" %s(%s평)", unit, formatNumber(*p.Pyeong))
		} else {
			label += " " + unit
		}
	}
	return label
}

func withSuffix(s, suffix string) string {
	if strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
