package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusOverdue = "OVERDUE"
)

// Invoice covers one billing period for one client. Periods are half-open
// [PeriodFrom, PeriodTo) and never overlap for the same client. Invoices are
// never deleted, only superseded by the next period.
//
// Total = Subtotal + Taxes and Balance = Total - AmountPaid hold after every
// reconciliation.
type Invoice struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo       string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client          *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	PeriodFrom      time.Time       `gorm:"type:date;not null;index" json:"period_from"`
	PeriodTo        time.Time       `gorm:"type:date;not null" json:"period_to"`
	DueDate         time.Time       `gorm:"type:date;not null" json:"due_date"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	Taxes           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"taxes"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"amount_paid"`
	Balance         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	IsAdjusted      bool            `gorm:"default:false" json:"is_adjusted"`
	AdjustmentNotes string          `gorm:"type:text" json:"adjustment_notes"` // customer-visible, explains the latest adjustment
	LastAdjustedAt  *time.Time      `json:"last_adjusted_at"`
	Note            string          `gorm:"type:text" json:"note"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceItem is one charge line. ShipmentID is set for charges generated by
// the per-shipment billing flow; those lines are append-only and immutable.
// Manual lines (nil ShipmentID) may be deleted and mark the invoice adjusted.
// UnitPrice may be negative for discounts and correcting entries.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_invoice_shipment" json:"invoice_id"`
	ShipmentID  *uuid.UUID      `gorm:"type:uuid;uniqueIndex:ux_invoice_shipment" json:"shipment_id"` // nil = manual item
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"` // Quantity x UnitPrice
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
