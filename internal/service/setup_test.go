package service

import (
	"testing"

	"parcelbilling/internal/database"
	"parcelbilling/internal/model"
	"parcelbilling/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createClient(t *testing.T, db *gorm.DB, name string, codAllowed bool) *model.Client {
	t.Helper()
	client := &model.Client{Name: name, CodAllowed: codAllowed, IsActive: true}
	require.NoError(t, db.Create(client).Error)
	return client
}

func createDomTier(t *testing.T, db *gorm.DB, minVol int, maxVol *int, baseRate, perKg string) *model.RateTier {
	t.Helper()
	tier := &model.RateTier{
		ServiceType:      model.ServiceTypeDOM,
		MinVolume:        &minVol,
		MaxVolume:        maxVol,
		BaseRate:         mustDecimal(t, baseRate),
		AdditionalKgRate: mustDecimal(t, perKg),
		IsActive:         true,
	}
	require.NoError(t, db.Create(tier).Error)
	return tier
}

func createSddTier(t *testing.T, db *gorm.DB, maxWeight, baseRate, perKg string) *model.RateTier {
	t.Helper()
	w := mustDecimal(t, maxWeight)
	tier := &model.RateTier{
		ServiceType:      model.ServiceTypeSDD,
		MaxWeight:        &w,
		BaseRate:         mustDecimal(t, baseRate),
		AdditionalKgRate: mustDecimal(t, perKg),
		IsActive:         true,
	}
	require.NoError(t, db.Create(tier).Error)
	return tier
}

func intPtr(v int) *int { return &v }

func newRateServiceForTest(db *gorm.DB) RateService {
	return NewRateService(repository.NewRateTierRepository(db), repository.NewClientRepository(db))
}

// billingFixture wires the full service graph over one in-memory database.
type billingFixture struct {
	db             *gorm.DB
	rateService    RateService
	tierService    RateTierService
	invoiceService InvoiceService
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	db := newTestDB(t)

	tierRepo := repository.NewRateTierRepository(db)
	clientRepo := repository.NewClientRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	itemRepo := repository.NewInvoiceItemRepository(db)
	txManager := repository.NewTransactionManager(db)

	rateService := NewRateService(tierRepo, clientRepo)
	cfg := BillingConfig{TaxRate: mustDecimal(t, "0.10"), DueDays: 15}

	return &billingFixture{
		db:             db,
		rateService:    rateService,
		tierService:    NewRateTierService(tierRepo, db),
		invoiceService: NewInvoiceService(invoiceRepo, itemRepo, clientRepo, shipmentRepo, rateService, txManager, db, nil, cfg),
	}
}

func (f *billingFixture) createShipment(t *testing.T, shipment *model.Shipment) *model.Shipment {
	t.Helper()
	require.NoError(t, f.db.Create(shipment).Error)
	return shipment
}

func (f *billingFixture) loadInvoice(t *testing.T, id string) *model.Invoice {
	t.Helper()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	var invoice model.Invoice
	require.NoError(t, f.db.First(&invoice, "id = ?", parsed).Error)
	return &invoice
}
