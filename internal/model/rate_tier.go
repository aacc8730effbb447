package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceType enum constants
const (
	ServiceTypeDOM = "DOM" // domestic next-business-day, priced by monthly volume
	ServiceTypeSDD = "SDD" // same-day delivery, priced by flat weight tier
)

// IncludedWeightKg is the weight allowance covered by a tier's base rate.
// It is the same for both service types.
const IncludedWeightKg = 5

// RateTier is one pricing bracket. DOM tiers bracket the client's monthly
// shipment volume; SDD tiers bracket the shipment's chargeable weight.
// Inactive tiers are excluded from selection but kept for invoice traceability.
type RateTier struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceType      string           `gorm:"type:varchar(10);not null;index" json:"service_type"` // DOM, SDD
	MinVolume        *int             `gorm:"" json:"min_volume"`                                  // DOM: inclusive lower bound
	MaxVolume        *int             `gorm:"" json:"max_volume"`                                  // DOM: inclusive upper bound, nil = open-ended
	MaxWeight        *decimal.Decimal `gorm:"type:decimal(10,3)" json:"max_weight"`                // SDD: inclusive weight ceiling in kg
	BaseRate         decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"base_rate"`
	AdditionalKgRate decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"additional_kg_rate"`
	IsActive         bool             `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (t *RateTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TierSelector is the tagged variant describing which dimension a tier
// brackets. Catalog matching is a single exhaustive switch over this type
// instead of conditional field-presence checks.
type TierSelector interface {
	isTierSelector()
}

// ByVolume brackets a monthly shipment count. Max nil means open-ended.
type ByVolume struct {
	Min int
	Max *int
}

// ByWeight brackets a chargeable weight with an inclusive ceiling.
type ByWeight struct {
	MaxWeight decimal.Decimal
}

func (ByVolume) isTierSelector() {}
func (ByWeight) isTierSelector() {}

// Selector maps the tier row onto its variant. DOM tiers select by volume,
// SDD tiers by weight.
func (t *RateTier) Selector() TierSelector {
	switch t.ServiceType {
	case ServiceTypeSDD:
		var max decimal.Decimal
		if t.MaxWeight != nil {
			max = *t.MaxWeight
		}
		return ByWeight{MaxWeight: max}
	default:
		min := 0
		if t.MinVolume != nil {
			min = *t.MinVolume
		}
		return ByVolume{Min: min, Max: t.MaxVolume}
	}
}

// ContainsVolume reports whether the monthly shipment count falls in the
// tier's inclusive [Min, Max] range.
func (v ByVolume) ContainsVolume(count int) bool {
	if count < v.Min {
		return false
	}
	return v.Max == nil || count <= *v.Max
}

// CoversWeight reports whether the chargeable weight fits under the tier's
// inclusive ceiling.
func (w ByWeight) CoversWeight(weight decimal.Decimal) bool {
	return weight.LessThanOrEqual(w.MaxWeight)
}
