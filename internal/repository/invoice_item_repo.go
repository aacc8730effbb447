package repository

import (
	"context"

	"parcelbilling/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceItemRepository interface {
	Create(ctx context.Context, item *model.InvoiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InvoiceItem, error)
	Delete(ctx context.Context, item *model.InvoiceItem) error
	// ListByInvoice returns items in insertion order.
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error)
	ExistsForShipment(ctx context.Context, invoiceID, shipmentID uuid.UUID) (bool, error)
}

type invoiceItemRepository struct {
	db *gorm.DB
}

func NewInvoiceItemRepository(db *gorm.DB) InvoiceItemRepository {
	return &invoiceItemRepository{db: db}
}

func (r *invoiceItemRepository) Create(ctx context.Context, item *model.InvoiceItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *invoiceItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InvoiceItem, error) {
	var item model.InvoiceItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *invoiceItemRepository) Delete(ctx context.Context, item *model.InvoiceItem) error {
	return GetDB(ctx, r.db).Delete(item).Error
}

func (r *invoiceItemRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	err := GetDB(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *invoiceItemRepository) ExistsForShipment(ctx context.Context, invoiceID, shipmentID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.InvoiceItem{}).
		Where("invoice_id = ? AND shipment_id = ?", invoiceID, shipmentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
