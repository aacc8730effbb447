package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a billing account. Rows are created and maintained by the account
// onboarding system; the billing core only ever reads them.
type Client struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string     `gorm:"type:varchar(255);not null" json:"name"`
	CodAllowed       bool       `gorm:"default:false" json:"cod_allowed"`
	FodAllowed       bool       `gorm:"default:false" json:"fod_allowed"`
	ManualRateTierID *uuid.UUID `gorm:"type:uuid" json:"manual_rate_tier_id"` // pinned tier, bypasses volume-based selection
	ManualRateTier   *RateTier  `gorm:"foreignKey:ManualRateTierID" json:"manual_rate_tier,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
