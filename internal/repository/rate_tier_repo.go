package repository

import (
	"context"

	"parcelbilling/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RateTierRepository interface {
	Create(ctx context.Context, tier *model.RateTier) error
	Save(ctx context.Context, tier *model.RateTier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RateTier, error)
	// ListActive returns active tiers for a service type ordered by their
	// lower bound (MinVolume for DOM, MaxWeight for SDD) so catalog matching
	// can walk them in bracket order.
	ListActive(ctx context.Context, serviceType string) ([]model.RateTier, error)
	List(ctx context.Context, serviceType string, page, limit int) ([]model.RateTier, int64, error)
}

type rateTierRepository struct {
	db *gorm.DB
}

func NewRateTierRepository(db *gorm.DB) RateTierRepository {
	return &rateTierRepository{db: db}
}

func (r *rateTierRepository) Create(ctx context.Context, tier *model.RateTier) error {
	return GetDB(ctx, r.db).Create(tier).Error
}

func (r *rateTierRepository) Save(ctx context.Context, tier *model.RateTier) error {
	return GetDB(ctx, r.db).Save(tier).Error
}

func (r *rateTierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RateTier, error) {
	var tier model.RateTier
	if err := GetDB(ctx, r.db).First(&tier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *rateTierRepository) ListActive(ctx context.Context, serviceType string) ([]model.RateTier, error) {
	var tiers []model.RateTier
	query := GetDB(ctx, r.db).Where("service_type = ? AND is_active = ?", serviceType, true)
	if serviceType == model.ServiceTypeSDD {
		query = query.Order("max_weight asc")
	} else {
		query = query.Order("min_volume asc")
	}
	if err := query.Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *rateTierRepository) List(ctx context.Context, serviceType string, page, limit int) ([]model.RateTier, int64, error) {
	var tiers []model.RateTier
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RateTier{})
	if serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("service_type asc, min_volume asc, max_weight asc").Offset(offset).Limit(limit)
	if serviceType != "" {
		fetch = fetch.Where("service_type = ?", serviceType)
	}
	if err := fetch.Find(&tiers).Error; err != nil {
		return nil, 0, err
	}

	return tiers, total, nil
}
