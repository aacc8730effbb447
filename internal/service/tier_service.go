package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcelbilling/internal/model"
	"parcelbilling/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRateTierRequest struct {
	ServiceType      string `json:"service_type" binding:"required,oneof=DOM SDD"`
	MinVolume        *int   `json:"min_volume"` // DOM only
	MaxVolume        *int   `json:"max_volume"` // DOM only, nil = open-ended top tier
	MaxWeight        string `json:"max_weight"` // SDD only, kg decimal string
	BaseRate         string `json:"base_rate" binding:"required"`
	AdditionalKgRate string `json:"additional_kg_rate" binding:"required"`
}

type UpdateRateTierRequest struct {
	MinVolume        *int    `json:"min_volume"`
	MaxVolume        *int    `json:"max_volume"`
	MaxWeight        *string `json:"max_weight"`
	BaseRate         *string `json:"base_rate"`
	AdditionalKgRate *string `json:"additional_kg_rate"`
	IsActive         *bool   `json:"is_active"`
}

type RateTierResponse struct {
	ID               string  `json:"id"`
	ServiceType      string  `json:"service_type"`
	MinVolume        *int    `json:"min_volume"`
	MaxVolume        *int    `json:"max_volume"`
	MaxWeight        *string `json:"max_weight"`
	BaseRate         string  `json:"base_rate"`
	AdditionalKgRate string  `json:"additional_kg_rate"`
	IsActive         bool    `json:"is_active"`
	CreatedAt        string  `json:"created_at"`
}

// CatalogIssue is one gap or overlap found by ValidateCatalog.
type CatalogIssue struct {
	ServiceType string `json:"service_type"`
	Kind        string `json:"kind"` // GAP, OVERLAP, OPEN_END_MISSING
	Detail      string `json:"detail"`
}

// --- Interface ---

type RateTierService interface {
	ListRateTiers(ctx context.Context, serviceType string, page, limit int) ([]RateTierResponse, int64, error)
	CreateRateTier(ctx context.Context, req CreateRateTierRequest, userID string) (RateTierResponse, error)
	UpdateRateTier(ctx context.Context, id string, req UpdateRateTierRequest, userID string) (RateTierResponse, error)
	DeactivateRateTier(ctx context.Context, id string, userID string) error
	// ValidateCatalog reports gaps and overlaps in the active tier set. Active
	// tiers must partition their dimension; a gap here becomes a
	// NoMatchingTier failure at rating time.
	ValidateCatalog(ctx context.Context) ([]CatalogIssue, error)
}

type rateTierService struct {
	tierRepo repository.RateTierRepository
	db       *gorm.DB
}

func NewRateTierService(tierRepo repository.RateTierRepository, db *gorm.DB) RateTierService {
	return &rateTierService{tierRepo: tierRepo, db: db}
}

// --- Implementation ---

func (s *rateTierService) ListRateTiers(ctx context.Context, serviceType string, page, limit int) ([]RateTierResponse, int64, error) {
	tiers, total, err := s.tierRepo.List(ctx, serviceType, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rate tiers: %w", err)
	}

	res := make([]RateTierResponse, 0, len(tiers))
	for _, t := range tiers {
		res = append(res, toRateTierResponse(t))
	}
	return res, total, nil
}

func (s *rateTierService) CreateRateTier(ctx context.Context, req CreateRateTierRequest, userID string) (RateTierResponse, error) {
	tier, err := buildTier(req)
	if err != nil {
		return RateTierResponse{}, err
	}

	if err := s.checkOverlap(ctx, tier, nil); err != nil {
		return RateTierResponse{}, err
	}

	if err := s.tierRepo.Create(ctx, tier); err != nil {
		return RateTierResponse{}, fmt.Errorf("failed to create rate tier: %w", err)
	}

	writeAuditLog(ctx, s.db, userID, model.ActionCreateRateTier, tier.ID.String(), tierLabel(tier), req)

	return toRateTierResponse(*tier), nil
}

func (s *rateTierService) UpdateRateTier(ctx context.Context, id string, req UpdateRateTierRequest, userID string) (RateTierResponse, error) {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return RateTierResponse{}, fmt.Errorf("invalid tier id: %w", err)
	}

	tier, err := s.tierRepo.FindByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RateTierResponse{}, ErrTierNotFound
		}
		return RateTierResponse{}, fmt.Errorf("failed to fetch rate tier: %w", err)
	}

	if req.MinVolume != nil {
		tier.MinVolume = req.MinVolume
	}
	if req.MaxVolume != nil {
		tier.MaxVolume = req.MaxVolume
	}
	if req.MaxWeight != nil {
		w, parseErr := decimal.NewFromString(*req.MaxWeight)
		if parseErr != nil {
			return RateTierResponse{}, fmt.Errorf("invalid max_weight: %w", parseErr)
		}
		tier.MaxWeight = &w
	}
	if req.BaseRate != nil {
		r, parseErr := decimal.NewFromString(*req.BaseRate)
		if parseErr != nil {
			return RateTierResponse{}, fmt.Errorf("invalid base_rate: %w", parseErr)
		}
		tier.BaseRate = r
	}
	if req.AdditionalKgRate != nil {
		r, parseErr := decimal.NewFromString(*req.AdditionalKgRate)
		if parseErr != nil {
			return RateTierResponse{}, fmt.Errorf("invalid additional_kg_rate: %w", parseErr)
		}
		tier.AdditionalKgRate = r
	}
	if req.IsActive != nil {
		tier.IsActive = *req.IsActive
	}

	if tier.IsActive {
		if err := s.checkOverlap(ctx, tier, &tierID); err != nil {
			return RateTierResponse{}, err
		}
	}

	if err := s.tierRepo.Save(ctx, tier); err != nil {
		return RateTierResponse{}, fmt.Errorf("failed to update rate tier: %w", err)
	}

	writeAuditLog(ctx, s.db, userID, model.ActionUpdateRateTier, tier.ID.String(), tierLabel(tier), req)

	return toRateTierResponse(*tier), nil
}

// DeactivateRateTier retires a tier from selection. Rows are never deleted so
// historical invoices keep a resolvable tier reference.
func (s *rateTierService) DeactivateRateTier(ctx context.Context, id string, userID string) error {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tier id: %w", err)
	}

	tier, err := s.tierRepo.FindByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTierNotFound
		}
		return fmt.Errorf("failed to fetch rate tier: %w", err)
	}

	tier.IsActive = false
	if err := s.tierRepo.Save(ctx, tier); err != nil {
		return fmt.Errorf("failed to deactivate rate tier: %w", err)
	}

	writeAuditLog(ctx, s.db, userID, model.ActionDeactivateRateTier, tier.ID.String(), tierLabel(tier), map[string]string{"deactivated_id": id})

	return nil
}

func (s *rateTierService) ValidateCatalog(ctx context.Context) ([]CatalogIssue, error) {
	issues := []CatalogIssue{}

	domTiers, err := s.tierRepo.ListActive(ctx, model.ServiceTypeDOM)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch DOM tiers: %w", err)
	}
	issues = append(issues, validateVolumeTiers(domTiers)...)

	sddTiers, err := s.tierRepo.ListActive(ctx, model.ServiceTypeSDD)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch SDD tiers: %w", err)
	}
	issues = append(issues, validateWeightTiers(sddTiers)...)

	return issues, nil
}

// validateVolumeTiers walks active DOM tiers in min_volume order and checks
// that their inclusive ranges tile the volume axis from zero upward.
func validateVolumeTiers(tiers []model.RateTier) []CatalogIssue {
	var issues []CatalogIssue
	expectedMin := 0

	for i := range tiers {
		sel, ok := tiers[i].Selector().(model.ByVolume)
		if !ok {
			continue
		}
		if sel.Min > expectedMin {
			issues = append(issues, CatalogIssue{
				ServiceType: model.ServiceTypeDOM,
				Kind:        "GAP",
				Detail:      fmt.Sprintf("volumes %d-%d are not covered by any active tier", expectedMin, sel.Min-1),
			})
		} else if sel.Min < expectedMin {
			issues = append(issues, CatalogIssue{
				ServiceType: model.ServiceTypeDOM,
				Kind:        "OVERLAP",
				Detail:      fmt.Sprintf("tier starting at volume %d overlaps the previous tier", sel.Min),
			})
		}
		if sel.Max == nil {
			// open-ended top tier closes the axis
			return issues
		}
		expectedMin = *sel.Max + 1
	}

	issues = append(issues, CatalogIssue{
		ServiceType: model.ServiceTypeDOM,
		Kind:        "OPEN_END_MISSING",
		Detail:      fmt.Sprintf("volumes above %d are not covered; the top tier should be open-ended", expectedMin-1),
	})
	return issues
}

// validateWeightTiers checks that no two active SDD tiers share a ceiling.
// Weight bands are implied by successive ceilings, so a duplicate ceiling is
// the only possible overlap.
func validateWeightTiers(tiers []model.RateTier) []CatalogIssue {
	var issues []CatalogIssue
	seen := map[string]bool{}

	for i := range tiers {
		sel, ok := tiers[i].Selector().(model.ByWeight)
		if !ok {
			continue
		}
		key := sel.MaxWeight.String()
		if seen[key] {
			issues = append(issues, CatalogIssue{
				ServiceType: model.ServiceTypeSDD,
				Kind:        "OVERLAP",
				Detail:      fmt.Sprintf("two active tiers share the %s kg ceiling", key),
			})
		}
		seen[key] = true
	}
	return issues
}

// checkOverlap rejects a tier whose range collides with another active tier
// of the same service type.
func (s *rateTierService) checkOverlap(ctx context.Context, tier *model.RateTier, excludeID *uuid.UUID) error {
	existing, err := s.tierRepo.ListActive(ctx, tier.ServiceType)
	if err != nil {
		return fmt.Errorf("failed to check tier overlap: %w", err)
	}

	for i := range existing {
		if excludeID != nil && existing[i].ID == *excludeID {
			continue
		}
		if selectorsOverlap(tier.Selector(), existing[i].Selector()) {
			return ErrTierOverlap
		}
	}
	return nil
}

func selectorsOverlap(a, b model.TierSelector) bool {
	switch av := a.(type) {
	case model.ByVolume:
		bv, ok := b.(model.ByVolume)
		if !ok {
			return false
		}
		if av.Max != nil && *av.Max < bv.Min {
			return false
		}
		if bv.Max != nil && *bv.Max < av.Min {
			return false
		}
		return true
	case model.ByWeight:
		bw, ok := b.(model.ByWeight)
		if !ok {
			return false
		}
		return av.MaxWeight.Equal(bw.MaxWeight)
	}
	return false
}

// --- Helpers ---

func buildTier(req CreateRateTierRequest) (*model.RateTier, error) {
	baseRate, err := decimal.NewFromString(req.BaseRate)
	if err != nil {
		return nil, fmt.Errorf("invalid base_rate: %w", err)
	}
	perKg, err := decimal.NewFromString(req.AdditionalKgRate)
	if err != nil {
		return nil, fmt.Errorf("invalid additional_kg_rate: %w", err)
	}

	tier := model.RateTier{
		ServiceType:      req.ServiceType,
		BaseRate:         baseRate,
		AdditionalKgRate: perKg,
		IsActive:         true,
	}

	switch req.ServiceType {
	case model.ServiceTypeDOM:
		if req.MinVolume == nil {
			return nil, fmt.Errorf("min_volume is required for DOM tiers")
		}
		if req.MaxVolume != nil && *req.MaxVolume < *req.MinVolume {
			return nil, fmt.Errorf("max_volume must not be below min_volume")
		}
		tier.MinVolume = req.MinVolume
		tier.MaxVolume = req.MaxVolume
	case model.ServiceTypeSDD:
		if req.MaxWeight == "" {
			return nil, fmt.Errorf("max_weight is required for SDD tiers")
		}
		w, parseErr := decimal.NewFromString(req.MaxWeight)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid max_weight: %w", parseErr)
		}
		if !w.IsPositive() {
			return nil, fmt.Errorf("max_weight must be positive")
		}
		tier.MaxWeight = &w
	}

	return &tier, nil
}

func tierLabel(t *model.RateTier) string {
	switch sel := t.Selector().(type) {
	case model.ByVolume:
		if sel.Max == nil {
			return fmt.Sprintf("DOM %d+", sel.Min)
		}
		return fmt.Sprintf("DOM %d-%d", sel.Min, *sel.Max)
	case model.ByWeight:
		return fmt.Sprintf("SDD up to %s kg", sel.MaxWeight.String())
	}
	return t.ServiceType
}

func toRateTierResponse(t model.RateTier) RateTierResponse {
	resp := RateTierResponse{
		ID:               t.ID.String(),
		ServiceType:      t.ServiceType,
		MinVolume:        t.MinVolume,
		MaxVolume:        t.MaxVolume,
		BaseRate:         t.BaseRate.StringFixed(2),
		AdditionalKgRate: t.AdditionalKgRate.StringFixed(2),
		IsActive:         t.IsActive,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}
	if t.MaxWeight != nil {
		w := t.MaxWeight.StringFixed(3)
		resp.MaxWeight = &w
	}
	return resp
}

