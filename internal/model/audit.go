package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateRateTier     = "CREATE_RATE_TIER"
	ActionUpdateRateTier     = "UPDATE_RATE_TIER"
	ActionDeactivateRateTier = "DEACTIVATE_RATE_TIER"
	ActionCreateInvoice      = "CREATE_INVOICE"
	ActionBillShipment       = "BILL_SHIPMENT"
	ActionAddManualItem      = "ADD_MANUAL_ITEM"
	ActionDeleteManualItem   = "DELETE_MANUAL_ITEM"
	ActionAdjustInvoice      = "ADJUST_INVOICE"
	ActionRecordPayment      = "RECORD_PAYMENT"
)

// AuditLog tracks Who, What, and When for every change to billing data.
// UserID is nil for changes driven by system flows rather than an operator.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
