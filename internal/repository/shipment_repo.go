package repository

import (
	"context"
	"time"

	"parcelbilling/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentRepository reads the order system's shipment table. Billing never
// writes shipment rows.
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	// CountForClient counts the client's shipments created in [from, before).
	// Callers pass the calendar-month start and the billed shipment's own
	// CreatedAt so each shipment observes the count of shipments before it.
	CountForClient(ctx context.Context, clientID uuid.UUID, from, before time.Time) (int64, error)
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var shipment model.Shipment
	if err := GetDB(ctx, r.db).First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) CountForClient(ctx context.Context, clientID uuid.UUID, from, before time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Shipment{}).
		Where("client_id = ? AND created_at >= ? AND created_at < ?", clientID, from, before).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
