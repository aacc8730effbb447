package service

import (
	"context"
	"errors"
	"fmt"

	"parcelbilling/internal/model"
	"parcelbilling/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Volumetric divisor: dimensional weight is ceil(L*W*H / 5000) for
// centimeter dimensions.
var volumetricDivisor = decimal.NewFromInt(5000)

// COD handling fee: 3.3% of the collected amount with a 2.00 floor.
var (
	codFeePercent = decimal.RequireFromString("0.033")
	codFeeMinimum = decimal.RequireFromString("2.00")
)

// --- DTOs ---

type CalculateRateRequest struct {
	ClientID    string `json:"client_id" binding:"required"`
	ServiceType string `json:"service_type" binding:"required,oneof=DOM SDD"`
	Weight      string `json:"weight" binding:"required"` // kg, decimal string
	Length      string `json:"length"`                    // cm, all three required for volumetric weight
	Width       string `json:"width"`
	Height      string `json:"height"`
	// MonthlyShipmentCount is the client's shipment count for the current
	// calendar month, supplied by the order system. Only used for DOM tiers
	// when the client has no manual tier override.
	MonthlyShipmentCount int64 `json:"monthly_shipment_count"`
}

type RateResult struct {
	TierID             string `json:"tier_id"`
	ServiceType        string `json:"service_type"`
	ChargeableWeight   string `json:"chargeable_weight"`
	BaseRate           string `json:"base_rate"`
	AdditionalKgCharge string `json:"additional_kg_charge"`
	TotalRate          string `json:"total_rate"`
	UsingManualTier    bool   `json:"using_manual_tier"`
}

type CodFeeRequest struct {
	CodAmount string `json:"cod_amount" binding:"required"`
}

type CodFeeResult struct {
	CodAmount string `json:"cod_amount"`
	Fee       string `json:"fee"`
}

// Dimensions carries optional shipment dimensions in centimeters.
type Dimensions struct {
	Length *decimal.Decimal
	Width  *decimal.Decimal
	Height *decimal.Decimal
}

// ShipmentRate is the decimal-typed rating result used by the billing flow.
type ShipmentRate struct {
	Tier               model.RateTier
	ChargeableWeight   decimal.Decimal
	BaseRate           decimal.Decimal
	AdditionalKgCharge decimal.Decimal
	TotalRate          decimal.Decimal
	UsingManualTier    bool
}

// --- Interface ---

type RateService interface {
	CalculateRate(ctx context.Context, req CalculateRateRequest) (RateResult, error)
	CalculateCodFee(req CodFeeRequest) (CodFeeResult, error)
	// RateShipment computes the charge for one shipment. The monthly count is
	// an explicit parameter so the computation never reads the wall clock or
	// storage on its own; the billing flow supplies a transactionally
	// consistent count, the HTTP surface passes the order system's figure.
	RateShipment(ctx context.Context, client *model.Client, serviceType string, weight decimal.Decimal, dims Dimensions, monthlyCount int64) (*ShipmentRate, error)
}

type rateService struct {
	tierRepo   repository.RateTierRepository
	clientRepo repository.ClientRepository
}

func NewRateService(tierRepo repository.RateTierRepository, clientRepo repository.ClientRepository) RateService {
	return &rateService{tierRepo: tierRepo, clientRepo: clientRepo}
}

// --- Implementation ---

func (s *rateService) CalculateRate(ctx context.Context, req CalculateRateRequest) (RateResult, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return RateResult{}, fmt.Errorf("invalid client_id: %w", err)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RateResult{}, ErrClientNotFound
		}
		return RateResult{}, fmt.Errorf("failed to fetch client: %w", err)
	}

	weight, err := decimal.NewFromString(req.Weight)
	if err != nil {
		return RateResult{}, fmt.Errorf("invalid weight: %w", err)
	}

	dims, err := parseDimensions(req.Length, req.Width, req.Height)
	if err != nil {
		return RateResult{}, err
	}

	rate, err := s.RateShipment(ctx, client, req.ServiceType, weight, dims, req.MonthlyShipmentCount)
	if err != nil {
		return RateResult{}, err
	}

	return RateResult{
		TierID:             rate.Tier.ID.String(),
		ServiceType:        rate.Tier.ServiceType,
		ChargeableWeight:   rate.ChargeableWeight.StringFixed(3),
		BaseRate:           rate.BaseRate.StringFixed(2),
		AdditionalKgCharge: rate.AdditionalKgCharge.StringFixed(2),
		TotalRate:          rate.TotalRate.StringFixed(2),
		UsingManualTier:    rate.UsingManualTier,
	}, nil
}

func (s *rateService) CalculateCodFee(req CodFeeRequest) (CodFeeResult, error) {
	amount, err := decimal.NewFromString(req.CodAmount)
	if err != nil {
		return CodFeeResult{}, fmt.Errorf("invalid cod_amount: %w", err)
	}

	fee, err := CodFee(amount)
	if err != nil {
		return CodFeeResult{}, err
	}

	return CodFeeResult{
		CodAmount: amount.StringFixed(2),
		Fee:       fee.StringFixed(2),
	}, nil
}

func (s *rateService) RateShipment(ctx context.Context, client *model.Client, serviceType string, weight decimal.Decimal, dims Dimensions, monthlyCount int64) (*ShipmentRate, error) {
	chargeable := ChargeableWeight(weight, dims)
	if chargeable.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidWeight
	}

	var tier *model.RateTier
	var err error
	usingManual := false

	switch {
	case client.ManualRateTierID != nil:
		tier, err = s.findTierByID(ctx, *client.ManualRateTierID)
		usingManual = true
	case serviceType == model.ServiceTypeDOM:
		tier, err = s.findDomTier(ctx, monthlyCount)
	default:
		tier, err = s.findSddTier(ctx, chargeable)
	}
	if err != nil {
		return nil, err
	}

	base := tier.BaseRate
	additional := additionalKgCharge(chargeable, tier.AdditionalKgRate)

	return &ShipmentRate{
		Tier:               *tier,
		ChargeableWeight:   chargeable,
		BaseRate:           base,
		AdditionalKgCharge: additional,
		TotalRate:          base.Add(additional),
		UsingManualTier:    usingManual,
	}, nil
}

// --- Catalog matching ---

// findDomTier selects the unique active DOM tier whose volume range contains
// the monthly shipment count. A miss signals a catalog gap, never a guess.
func (s *rateService) findDomTier(ctx context.Context, count int64) (*model.RateTier, error) {
	tiers, err := s.tierRepo.ListActive(ctx, model.ServiceTypeDOM)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch DOM tiers: %w", err)
	}

	for i := range tiers {
		switch sel := tiers[i].Selector().(type) {
		case model.ByVolume:
			if sel.ContainsVolume(int(count)) {
				return &tiers[i], nil
			}
		case model.ByWeight:
			// a weight selector on a DOM tier is bad catalog data; skip it
		}
	}
	return nil, ErrNoMatchingTier
}

// findSddTier selects the tightest-fit active SDD tier: the smallest
// MaxWeight that still covers the chargeable weight.
func (s *rateService) findSddTier(ctx context.Context, weight decimal.Decimal) (*model.RateTier, error) {
	tiers, err := s.tierRepo.ListActive(ctx, model.ServiceTypeSDD)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch SDD tiers: %w", err)
	}

	// tiers arrive ordered by max_weight asc, so the first cover is tightest
	for i := range tiers {
		switch sel := tiers[i].Selector().(type) {
		case model.ByWeight:
			if sel.CoversWeight(weight) {
				return &tiers[i], nil
			}
		case model.ByVolume:
		}
	}
	return nil, ErrWeightExceedsMaxTier
}

func (s *rateService) findTierByID(ctx context.Context, id uuid.UUID) (*model.RateTier, error) {
	tier, err := s.tierRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to fetch tier: %w", err)
	}
	if !tier.IsActive {
		return nil, ErrTierNotFound
	}
	return tier, nil
}

// --- Pure computation helpers ---

// ChargeableWeight is the greater of actual and volumetric weight.
// Volumetric weight is ceil(L*W*H/5000) and applies only when all three
// dimensions are present and positive.
func ChargeableWeight(actual decimal.Decimal, dims Dimensions) decimal.Decimal {
	volumetric := VolumetricWeight(dims)
	if volumetric.GreaterThan(actual) {
		return volumetric
	}
	return actual
}

func VolumetricWeight(dims Dimensions) decimal.Decimal {
	if dims.Length == nil || dims.Width == nil || dims.Height == nil {
		return decimal.Zero
	}
	if !dims.Length.IsPositive() || !dims.Width.IsPositive() || !dims.Height.IsPositive() {
		return decimal.Zero
	}
	return dims.Length.Mul(*dims.Width).Mul(*dims.Height).Div(volumetricDivisor).Ceil()
}

// additionalKgCharge bills every started kilogram beyond the 5 kg allowance.
func additionalKgCharge(chargeable, perKgRate decimal.Decimal) decimal.Decimal {
	extra := chargeable.Ceil().Sub(decimal.NewFromInt(model.IncludedWeightKg))
	if extra.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return perKgRate.Mul(extra)
}

// CodFee computes the cash-handling fee: 3.3% of the collected amount with a
// 2.00 floor, rounded half-up to 2 decimal places.
func CodFee(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	fee := amount.Mul(codFeePercent)
	if fee.LessThan(codFeeMinimum) {
		fee = codFeeMinimum
	}
	return fee.Round(2), nil
}

func parseDimensions(length, width, height string) (Dimensions, error) {
	parse := func(name, raw string) (*decimal.Decimal, error) {
		if raw == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		return &d, nil
	}

	var dims Dimensions
	var err error
	if dims.Length, err = parse("length", length); err != nil {
		return Dimensions{}, err
	}
	if dims.Width, err = parse("width", width); err != nil {
		return Dimensions{}, err
	}
	if dims.Height, err = parse("height", height); err != nil {
		return Dimensions{}, err
	}
	return dims, nil
}
