package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shipment mirrors the order system's shipment table. The billing core treats
// it as read-only input: rows are written by order intake, never by billing.
// Dimensions are in centimeters, weight in kilograms.
type Shipment struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"client_id"`
	ServiceType string           `gorm:"type:varchar(10);not null" json:"service_type"` // DOM, SDD
	Weight      decimal.Decimal  `gorm:"type:decimal(10,3);not null" json:"weight"`
	Pieces      int              `gorm:"not null;default:1" json:"pieces"`
	Length      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"length"`
	Width       *decimal.Decimal `gorm:"type:decimal(10,2)" json:"width"`
	Height      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"height"`
	CodRequired bool             `gorm:"default:false" json:"cod_required"`
	CodAmount   decimal.Decimal  `gorm:"type:decimal(18,2);default:0" json:"cod_amount"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
