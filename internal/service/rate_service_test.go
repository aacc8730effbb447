package service

import (
	"context"
	"testing"

	"parcelbilling/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimsFromStrings(t *testing.T, l, w, h string) Dimensions {
	t.Helper()
	ld := mustDecimal(t, l)
	wd := mustDecimal(t, w)
	hd := mustDecimal(t, h)
	return Dimensions{Length: &ld, Width: &wd, Height: &hd}
}

func TestVolumetricWeight(t *testing.T) {
	t.Run("standard box", func(t *testing.T) {
		// 50*50*20 = 50000 / 5000 = 10
		got := VolumetricWeight(dimsFromStrings(t, "50", "50", "20"))
		assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)
	})

	t.Run("rounds up to the next whole kg", func(t *testing.T) {
		// 33*33*33 = 35937 / 5000 = 7.1874 -> 8
		got := VolumetricWeight(dimsFromStrings(t, "33", "33", "33"))
		assert.True(t, got.Equal(decimal.NewFromInt(8)), "got %s", got)
	})

	t.Run("missing dimension yields zero", func(t *testing.T) {
		l := mustDecimal(t, "50")
		got := VolumetricWeight(Dimensions{Length: &l})
		assert.True(t, got.IsZero())
	})

	t.Run("non-positive dimension yields zero", func(t *testing.T) {
		got := VolumetricWeight(dimsFromStrings(t, "50", "0", "20"))
		assert.True(t, got.IsZero())
	})
}

func TestChargeableWeight(t *testing.T) {
	t.Run("volumetric wins when greater", func(t *testing.T) {
		got := ChargeableWeight(mustDecimal(t, "3.5"), dimsFromStrings(t, "50", "50", "20"))
		assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)
	})

	t.Run("actual wins when greater", func(t *testing.T) {
		got := ChargeableWeight(mustDecimal(t, "12.4"), dimsFromStrings(t, "50", "50", "20"))
		assert.True(t, got.Equal(mustDecimal(t, "12.4")), "got %s", got)
	})

	t.Run("no dimensions falls back to actual", func(t *testing.T) {
		got := ChargeableWeight(mustDecimal(t, "4.2"), Dimensions{})
		assert.True(t, got.Equal(mustDecimal(t, "4.2")))
	})
}

func TestAdditionalKgCharge(t *testing.T) {
	perKg := mustDecimal(t, "1.50")

	t.Run("within the allowance costs nothing", func(t *testing.T) {
		got := additionalKgCharge(mustDecimal(t, "5"), perKg)
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("below the allowance costs nothing", func(t *testing.T) {
		got := additionalKgCharge(mustDecimal(t, "0.3"), perKg)
		assert.True(t, got.IsZero())
	})

	t.Run("a started kg bills as a whole kg", func(t *testing.T) {
		// 5.2 -> ceil 6 -> 1 extra kg
		got := additionalKgCharge(mustDecimal(t, "5.2"), perKg)
		assert.True(t, got.Equal(mustDecimal(t, "1.50")), "got %s", got)
	})

	t.Run("whole kg overage", func(t *testing.T) {
		// 9 -> 4 extra kg
		got := additionalKgCharge(mustDecimal(t, "9"), perKg)
		assert.True(t, got.Equal(mustDecimal(t, "6.00")), "got %s", got)
	})
}

func TestCodFee(t *testing.T) {
	t.Run("floor applies to small amounts", func(t *testing.T) {
		// 10 * 0.033 = 0.33 -> floor 2.00
		fee, err := CodFee(mustDecimal(t, "10"))
		require.NoError(t, err)
		assert.Equal(t, "2.00", fee.StringFixed(2))
	})

	t.Run("percentage applies above the floor", func(t *testing.T) {
		fee, err := CodFee(mustDecimal(t, "1000"))
		require.NoError(t, err)
		assert.Equal(t, "33.00", fee.StringFixed(2))
	})

	t.Run("rounds half up", func(t *testing.T) {
		// 75 * 0.033 = 2.475 -> 2.48
		fee, err := CodFee(mustDecimal(t, "75"))
		require.NoError(t, err)
		assert.Equal(t, "2.48", fee.StringFixed(2))
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		_, err := CodFee(decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = CodFee(mustDecimal(t, "-5"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestCalculateRateDOM(t *testing.T) {
	db := newTestDB(t)
	svc := newRateServiceForTest(db)
	ctx := context.Background()

	client := createClient(t, db, "Acme Retail", false)
	lowTier := createDomTier(t, db, 0, intPtr(10), "8.00", "1.20")
	highTier := createDomTier(t, db, 11, nil, "6.50", "1.00")

	t.Run("low volume selects the first tier", func(t *testing.T) {
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:             client.ID.String(),
			ServiceType:          model.ServiceTypeDOM,
			Weight:               "4",
			MonthlyShipmentCount: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, lowTier.ID.String(), res.TierID)
		assert.Equal(t, "8.00", res.TotalRate)
		assert.False(t, res.UsingManualTier)
	})

	t.Run("twelfth shipment of the month lands in the second tier", func(t *testing.T) {
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:             client.ID.String(),
			ServiceType:          model.ServiceTypeDOM,
			Weight:               "4",
			MonthlyShipmentCount: 12,
		})
		require.NoError(t, err)
		assert.Equal(t, highTier.ID.String(), res.TierID)
		assert.Equal(t, "6.50", res.TotalRate)
	})

	t.Run("overage is added on top of the base rate", func(t *testing.T) {
		// chargeable 7.5 -> ceil 8 -> 3 extra kg at 1.20
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:             client.ID.String(),
			ServiceType:          model.ServiceTypeDOM,
			Weight:               "7.5",
			MonthlyShipmentCount: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "3.60", res.AdditionalKgCharge)
		assert.Equal(t, "11.60", res.TotalRate)
	})
}

func TestCalculateRateSDD(t *testing.T) {
	db := newTestDB(t)
	svc := newRateServiceForTest(db)
	ctx := context.Background()

	client := createClient(t, db, "Speedy Foods", false)
	smallTier := createSddTier(t, db, "5", "12.00", "2.00")
	largeTier := createSddTier(t, db, "15", "18.00", "2.50")

	t.Run("tightest covering tier wins", func(t *testing.T) {
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:    client.ID.String(),
			ServiceType: model.ServiceTypeSDD,
			Weight:      "4.8",
		})
		require.NoError(t, err)
		assert.Equal(t, smallTier.ID.String(), res.TierID)
	})

	t.Run("ceiling is inclusive", func(t *testing.T) {
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:    client.ID.String(),
			ServiceType: model.ServiceTypeSDD,
			Weight:      "5",
		})
		require.NoError(t, err)
		assert.Equal(t, smallTier.ID.String(), res.TierID)
	})

	t.Run("volumetric weight can push into a larger tier", func(t *testing.T) {
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:    client.ID.String(),
			ServiceType: model.ServiceTypeSDD,
			Weight:      "3.5",
			Length:      "50",
			Width:       "50",
			Height:      "20",
		})
		require.NoError(t, err)
		assert.Equal(t, largeTier.ID.String(), res.TierID)
		assert.Equal(t, "10.000", res.ChargeableWeight)
	})

	t.Run("weight beyond every ceiling is rejected", func(t *testing.T) {
		_, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:    client.ID.String(),
			ServiceType: model.ServiceTypeSDD,
			Weight:      "15.1",
		})
		assert.ErrorIs(t, err, ErrWeightExceedsMaxTier)
	})
}

func TestCalculateRateCatalogGap(t *testing.T) {
	db := newTestDB(t)
	svc := newRateServiceForTest(db)
	ctx := context.Background()

	client := createClient(t, db, "Gap Victim", false)
	createDomTier(t, db, 0, intPtr(10), "8.00", "1.20")
	// no tier covers counts above 10

	_, err := svc.CalculateRate(ctx, CalculateRateRequest{
		ClientID:             client.ID.String(),
		ServiceType:          model.ServiceTypeDOM,
		Weight:               "2",
		MonthlyShipmentCount: 25,
	})
	assert.ErrorIs(t, err, ErrNoMatchingTier)
}

func TestCalculateRateManualTier(t *testing.T) {
	db := newTestDB(t)
	svc := newRateServiceForTest(db)
	ctx := context.Background()

	pinned := createDomTier(t, db, 0, intPtr(10), "5.00", "0.80")
	createDomTier(t, db, 11, nil, "9.00", "1.50")

	client := createClient(t, db, "Negotiated Deal Co", false)
	client.ManualRateTierID = &pinned.ID
	require.NoError(t, db.Save(client).Error)

	t.Run("pinned tier bypasses volume selection", func(t *testing.T) {
		res, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:             client.ID.String(),
			ServiceType:          model.ServiceTypeDOM,
			Weight:               "2",
			MonthlyShipmentCount: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, pinned.ID.String(), res.TierID)
		assert.True(t, res.UsingManualTier)
	})

	t.Run("deactivated pinned tier is an error, not a fallback", func(t *testing.T) {
		pinned.IsActive = false
		require.NoError(t, db.Save(pinned).Error)

		_, err := svc.CalculateRate(ctx, CalculateRateRequest{
			ClientID:             client.ID.String(),
			ServiceType:          model.ServiceTypeDOM,
			Weight:               "2",
			MonthlyShipmentCount: 1,
		})
		assert.ErrorIs(t, err, ErrTierNotFound)
	})
}

func TestCalculateRateInvalidWeight(t *testing.T) {
	db := newTestDB(t)
	svc := newRateServiceForTest(db)

	client := createClient(t, db, "Zero Weight", false)
	createDomTier(t, db, 0, nil, "8.00", "1.20")

	_, err := svc.CalculateRate(context.Background(), CalculateRateRequest{
		ClientID:    client.ID.String(),
		ServiceType: model.ServiceTypeDOM,
		Weight:      "0",
	})
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestCalculateCodFeeDTO(t *testing.T) {
	svc := newRateServiceForTest(newTestDB(t))

	res, err := svc.CalculateCodFee(CodFeeRequest{CodAmount: "250.40"})
	require.NoError(t, err)
	assert.Equal(t, "250.40", res.CodAmount)
	assert.Equal(t, "8.26", res.Fee) // 250.40 * 0.033 = 8.2632

	_, err = svc.CalculateCodFee(CodFeeRequest{CodAmount: "not-a-number"})
	assert.Error(t, err)
}
