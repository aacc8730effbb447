package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"parcelbilling/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *billingFixture) createPeriodInvoice(t *testing.T, clientID, from, to string) InvoiceResponse {
	t.Helper()
	inv, err := f.invoiceService.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:   clientID,
		PeriodFrom: from,
		PeriodTo:   to,
	}, "")
	require.NoError(t, err)
	return inv
}

func TestCreateInvoice(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)

	t.Run("creates an empty invoice with a due date", func(t *testing.T) {
		inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")
		assert.True(t, strings.HasPrefix(inv.InvoiceNo, "INV-"))
		assert.Equal(t, "0.00", inv.Subtotal)
		assert.Equal(t, "0.00", inv.Total)
		assert.Equal(t, model.InvoiceStatusPending, inv.Status)
		assert.Equal(t, "2026-09-16", inv.DueDate) // period end + 15 days
		assert.False(t, inv.IsAdjusted)
	})

	t.Run("numbers are sequential within a day", func(t *testing.T) {
		inv := f.createPeriodInvoice(t, client.ID.String(), "2026-09-01", "2026-10-01")
		assert.True(t, strings.HasSuffix(inv.InvoiceNo, "-00002"), "got %s", inv.InvoiceNo)
	})

	t.Run("rejects an overlapping period", func(t *testing.T) {
		_, err := f.invoiceService.CreateInvoice(ctx, CreateInvoiceRequest{
			ClientID:   client.ID.String(),
			PeriodFrom: "2026-08-15",
			PeriodTo:   "2026-09-15",
		}, "")
		assert.ErrorIs(t, err, ErrPeriodOverlap)
	})

	t.Run("half-open periods may touch", func(t *testing.T) {
		_, err := f.invoiceService.CreateInvoice(ctx, CreateInvoiceRequest{
			ClientID:   client.ID.String(),
			PeriodFrom: "2026-10-01",
			PeriodTo:   "2026-11-01",
		}, "")
		require.NoError(t, err)
	})

	t.Run("rejects an inverted period", func(t *testing.T) {
		_, err := f.invoiceService.CreateInvoice(ctx, CreateInvoiceRequest{
			ClientID:   client.ID.String(),
			PeriodFrom: "2026-12-01",
			PeriodTo:   "2026-12-01",
		}, "")
		assert.Error(t, err)
	})

	t.Run("unknown client is not found", func(t *testing.T) {
		_, err := f.invoiceService.CreateInvoice(ctx, CreateInvoiceRequest{
			ClientID:   "11111111-1111-1111-1111-111111111111",
			PeriodFrom: "2026-08-01",
			PeriodTo:   "2026-09-01",
		}, "")
		assert.ErrorIs(t, err, ErrClientNotFound)
	})
}

func TestAddManualItem(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	t.Run("item recomputes subtotal, taxes and total", func(t *testing.T) {
		item, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
			Description:     "Packaging materials",
			Quantity:        2,
			UnitPrice:       "12.50",
			AdjustmentNotes: "client requested extra packaging",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "25.00", item.Total)
		assert.Nil(t, item.ShipmentID)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "25.00", reloaded.Subtotal.StringFixed(2))
		assert.Equal(t, "2.50", reloaded.Taxes.StringFixed(2))
		assert.Equal(t, "27.50", reloaded.Total.StringFixed(2))
		assert.Equal(t, "27.50", reloaded.Balance.StringFixed(2))
		assert.True(t, reloaded.IsAdjusted)
		assert.Equal(t, "client requested extra packaging", reloaded.AdjustmentNotes)
		assert.NotNil(t, reloaded.LastAdjustedAt)
	})

	t.Run("negative item reduces the subtotal", func(t *testing.T) {
		_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
			Description: "Loyalty discount",
			Quantity:    1,
			UnitPrice:   "-5.00",
		}, "")
		require.NoError(t, err)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "20.00", reloaded.Subtotal.StringFixed(2))
		assert.Equal(t, "2.00", reloaded.Taxes.StringFixed(2))
		// earlier notes survive an adjustment without notes
		assert.Equal(t, "client requested extra packaging", reloaded.AdjustmentNotes)
	})

	t.Run("negative subtotal never generates negative tax", func(t *testing.T) {
		_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
			Description: "Large correcting credit",
			Quantity:    1,
			UnitPrice:   "-100.00",
		}, "")
		require.NoError(t, err)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "-80.00", reloaded.Subtotal.StringFixed(2))
		assert.Equal(t, "0.00", reloaded.Taxes.StringFixed(2))
		assert.Equal(t, "-80.00", reloaded.Total.StringFixed(2))
	})

	t.Run("unknown invoice is not found", func(t *testing.T) {
		_, err := f.invoiceService.AddManualItem(ctx, "11111111-1111-1111-1111-111111111111", AddManualItemRequest{
			Description: "Anything",
			Quantity:    1,
			UnitPrice:   "1.00",
		}, "")
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})
}

func TestDeleteItem(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	keep, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
		Description: "Keep me", Quantity: 1, UnitPrice: "10.00",
	}, "")
	require.NoError(t, err)
	doomed, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
		Description: "Delete me", Quantity: 1, UnitPrice: "40.00",
	}, "")
	require.NoError(t, err)

	t.Run("deleting a manual item recomputes and marks adjusted", func(t *testing.T) {
		err := f.invoiceService.DeleteItem(ctx, inv.ID, doomed.ID, DeleteItemRequest{
			AdjustmentNotes: "entered twice by mistake",
		}, "")
		require.NoError(t, err)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "10.00", reloaded.Subtotal.StringFixed(2))
		assert.Equal(t, "11.00", reloaded.Total.StringFixed(2))
		assert.True(t, reloaded.IsAdjusted)
		assert.Equal(t, "entered twice by mistake", reloaded.AdjustmentNotes)
	})

	t.Run("deleting an item of another invoice is not found", func(t *testing.T) {
		other := f.createPeriodInvoice(t, client.ID.String(), "2026-09-01", "2026-10-01")
		err := f.invoiceService.DeleteItem(ctx, other.ID, keep.ID, DeleteItemRequest{}, "")
		assert.ErrorIs(t, err, ErrInvoiceItemNotFound)
	})

	t.Run("shipment-generated items cannot be deleted", func(t *testing.T) {
		shipment := f.createShipment(t, &model.Shipment{
			ClientID:    client.ID,
			ServiceType: model.ServiceTypeDOM,
			Weight:      mustDecimal(t, "2"),
			CreatedAt:   time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
		})
		createDomTier(t, f.db, 0, nil, "8.00", "1.20")

		item, err := f.invoiceService.BillShipment(ctx, shipment.ID.String())
		require.NoError(t, err)

		before := f.loadInvoice(t, inv.ID)
		err = f.invoiceService.DeleteItem(ctx, inv.ID, item.ID, DeleteItemRequest{}, "")
		assert.ErrorIs(t, err, ErrCannotDeleteAutoItem)

		// rejected delete leaves the invoice untouched
		after := f.loadInvoice(t, inv.ID)
		assert.Equal(t, before.Subtotal.StringFixed(2), after.Subtotal.StringFixed(2))
		assert.Equal(t, before.Total.StringFixed(2), after.Total.StringFixed(2))
	})
}

func TestBillShipment(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", true)
	createDomTier(t, f.db, 0, intPtr(10), "8.00", "1.20")
	createDomTier(t, f.db, 11, nil, "6.50", "1.00")
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	shipment := f.createShipment(t, &model.Shipment{
		ClientID:    client.ID,
		ServiceType: model.ServiceTypeDOM,
		Weight:      mustDecimal(t, "4"),
		CreatedAt:   time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC),
	})

	t.Run("appends one charge to the period invoice", func(t *testing.T) {
		item, err := f.invoiceService.BillShipment(ctx, shipment.ID.String())
		require.NoError(t, err)
		assert.Equal(t, inv.ID, item.InvoiceID)
		require.NotNil(t, item.ShipmentID)
		assert.Equal(t, shipment.ID.String(), *item.ShipmentID)
		assert.Equal(t, "8.00", item.Total)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "8.00", reloaded.Subtotal.StringFixed(2))
		assert.Equal(t, "8.80", reloaded.Total.StringFixed(2))
		// automatic billing is not a manual adjustment
		assert.False(t, reloaded.IsAdjusted)
	})

	t.Run("billing the same shipment twice is rejected", func(t *testing.T) {
		_, err := f.invoiceService.BillShipment(ctx, shipment.ID.String())
		assert.ErrorIs(t, err, ErrDuplicateShipmentItem)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "8.00", reloaded.Subtotal.StringFixed(2))
	})

	t.Run("shipment outside every period has no invoice", func(t *testing.T) {
		stray := f.createShipment(t, &model.Shipment{
			ClientID:    client.ID,
			ServiceType: model.ServiceTypeDOM,
			Weight:      mustDecimal(t, "2"),
			CreatedAt:   time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC),
		})
		_, err := f.invoiceService.BillShipment(ctx, stray.ID.String())
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("unknown shipment is not found", func(t *testing.T) {
		_, err := f.invoiceService.BillShipment(ctx, "11111111-1111-1111-1111-111111111111")
		assert.ErrorIs(t, err, ErrShipmentNotFound)
	})
}

func TestBillShipmentMonthlyVolumeTier(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "High Volume Co", false)
	createDomTier(t, f.db, 0, intPtr(10), "8.00", "1.20")
	createDomTier(t, f.db, 11, nil, "6.50", "1.00")
	f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	// eleven earlier shipments this month push the twelfth into the high tier
	for day := 1; day <= 11; day++ {
		f.createShipment(t, &model.Shipment{
			ClientID:    client.ID,
			ServiceType: model.ServiceTypeDOM,
			Weight:      mustDecimal(t, "2"),
			CreatedAt:   time.Date(2026, 8, day, 8, 0, 0, 0, time.UTC),
		})
	}
	twelfth := f.createShipment(t, &model.Shipment{
		ClientID:    client.ID,
		ServiceType: model.ServiceTypeDOM,
		Weight:      mustDecimal(t, "2"),
		CreatedAt:   time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC),
	})

	item, err := f.invoiceService.BillShipment(ctx, twelfth.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "6.50", item.Total)
}

func TestBillShipmentCod(t *testing.T) {
	ctx := context.Background()

	t.Run("COD fee is folded into the shipment charge", func(t *testing.T) {
		f := newBillingFixture(t)
		client := createClient(t, f.db, "COD Shop", true)
		createDomTier(t, f.db, 0, nil, "8.00", "1.20")
		inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

		shipment := f.createShipment(t, &model.Shipment{
			ClientID:    client.ID,
			ServiceType: model.ServiceTypeDOM,
			Weight:      mustDecimal(t, "3"),
			CodRequired: true,
			CodAmount:   mustDecimal(t, "1000"),
			CreatedAt:   time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC),
		})

		item, err := f.invoiceService.BillShipment(ctx, shipment.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "41.00", item.Total) // 8.00 base + 33.00 fee
		assert.Contains(t, item.Description, "COD fee")

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, "41.00", reloaded.Subtotal.StringFixed(2))
	})

	t.Run("COD shipment for a non-COD client is rejected", func(t *testing.T) {
		f := newBillingFixture(t)
		client := createClient(t, f.db, "No COD Inc", false)
		createDomTier(t, f.db, 0, nil, "8.00", "1.20")
		f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

		shipment := f.createShipment(t, &model.Shipment{
			ClientID:    client.ID,
			ServiceType: model.ServiceTypeDOM,
			Weight:      mustDecimal(t, "3"),
			CodRequired: true,
			CodAmount:   mustDecimal(t, "50"),
			CreatedAt:   time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC),
		})

		_, err := f.invoiceService.BillShipment(ctx, shipment.ID.String())
		assert.ErrorIs(t, err, ErrCodNotAllowed)
	})
}

func TestRecordPayment(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
		Description: "Consulting", Quantity: 1, UnitPrice: "100.00",
	}, "")
	require.NoError(t, err)

	t.Run("partial payment before the due date stays pending", func(t *testing.T) {
		res, err := f.invoiceService.RecordPayment(ctx, inv.ID, RecordPaymentRequest{AmountPaid: "50.00"}, "")
		require.NoError(t, err)
		assert.Equal(t, "60.00", res.Balance) // 110.00 total - 50.00
		assert.Equal(t, model.InvoiceStatusPending, res.Status)
	})

	t.Run("full payment settles the invoice", func(t *testing.T) {
		res, err := f.invoiceService.RecordPayment(ctx, inv.ID, RecordPaymentRequest{AmountPaid: "110.00"}, "")
		require.NoError(t, err)
		assert.Equal(t, "0.00", res.Balance)
		assert.Equal(t, model.InvoiceStatusPaid, res.Status)
	})

	t.Run("partial payment after the due date is overdue", func(t *testing.T) {
		old := f.createPeriodInvoice(t, client.ID.String(), "2026-01-01", "2026-02-01")
		_, err := f.invoiceService.AddManualItem(ctx, old.ID, AddManualItemRequest{
			Description: "Old charge", Quantity: 1, UnitPrice: "100.00",
		}, "")
		require.NoError(t, err)

		res, err := f.invoiceService.RecordPayment(ctx, old.ID, RecordPaymentRequest{AmountPaid: "10.00"}, "")
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceStatusOverdue, res.Status)
	})
}

func TestUpdateInvoice(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
		Description: "Consulting", Quantity: 1, UnitPrice: "100.00",
	}, "")
	require.NoError(t, err)

	t.Run("forced status wins over derivation", func(t *testing.T) {
		paid := model.InvoiceStatusPaid
		res, err := f.invoiceService.UpdateInvoice(ctx, inv.ID, UpdateInvoiceRequest{Status: &paid}, "")
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceStatusPaid, res.Status)
		assert.Equal(t, "110.00", res.Balance) // balance untouched
	})

	t.Run("next item mutation re-derives the status", func(t *testing.T) {
		_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
			Description: "Another line", Quantity: 1, UnitPrice: "1.00",
		}, "")
		require.NoError(t, err)

		reloaded := f.loadInvoice(t, inv.ID)
		assert.Equal(t, model.InvoiceStatusPending, reloaded.Status)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		bogus := "CANCELLED"
		_, err := f.invoiceService.UpdateInvoice(ctx, inv.ID, UpdateInvoiceRequest{Status: &bogus}, "")
		assert.Error(t, err)
	})

	t.Run("note and adjustment notes are stored", func(t *testing.T) {
		note := "handled by accounting"
		adjNote := "rate corrected after complaint"
		res, err := f.invoiceService.UpdateInvoice(ctx, inv.ID, UpdateInvoiceRequest{
			Note:            &note,
			AdjustmentNotes: &adjNote,
		}, "")
		require.NoError(t, err)
		assert.Equal(t, note, res.Note)
		assert.Equal(t, adjNote, res.AdjustmentNotes)
		assert.True(t, res.IsAdjusted)
	})

	t.Run("setting amount paid derives the status", func(t *testing.T) {
		amount := "111.10"
		res, err := f.invoiceService.UpdateInvoice(ctx, inv.ID, UpdateInvoiceRequest{AmountPaid: &amount}, "")
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceStatusPaid, res.Status)
	})
}

func TestRecomputeDerivesFromItemSet(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
		Description: "Base charge", Quantity: 1, UnitPrice: "50.00",
	}, "")
	require.NoError(t, err)
	before := f.loadInvoice(t, inv.ID)

	// adding and removing an item must reproduce the same computed fields
	extra, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
		Description: "Transient", Quantity: 3, UnitPrice: "7.00",
	}, "")
	require.NoError(t, err)
	require.NoError(t, f.invoiceService.DeleteItem(ctx, inv.ID, extra.ID, DeleteItemRequest{}, ""))

	after := f.loadInvoice(t, inv.ID)
	assert.Equal(t, before.Subtotal.StringFixed(2), after.Subtotal.StringFixed(2))
	assert.Equal(t, before.Taxes.StringFixed(2), after.Taxes.StringFixed(2))
	assert.Equal(t, before.Total.StringFixed(2), after.Total.StringFixed(2))
	assert.Equal(t, before.Balance.StringFixed(2), after.Balance.StringFixed(2))
	assert.Equal(t, before.Status, after.Status)
}

func TestGetInvoiceDetails(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	client := createClient(t, f.db, "Acme Retail", false)
	inv := f.createPeriodInvoice(t, client.ID.String(), "2026-08-01", "2026-09-01")

	for _, desc := range []string{"First", "Second", "Third"} {
		_, err := f.invoiceService.AddManualItem(ctx, inv.ID, AddManualItemRequest{
			Description: desc, Quantity: 1, UnitPrice: "5.00",
		}, "")
		require.NoError(t, err)
	}

	details, err := f.invoiceService.GetInvoiceDetails(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, details.Invoice.ID)
	require.Len(t, details.Items, 3)
	assert.Equal(t, "15.00", details.Invoice.Subtotal)
}

func TestListInvoices(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	alpha := createClient(t, f.db, "Alpha", false)
	beta := createClient(t, f.db, "Beta", false)

	f.createPeriodInvoice(t, alpha.ID.String(), "2026-07-01", "2026-08-01")
	f.createPeriodInvoice(t, alpha.ID.String(), "2026-08-01", "2026-09-01")
	f.createPeriodInvoice(t, beta.ID.String(), "2026-08-01", "2026-09-01")

	t.Run("filters by client", func(t *testing.T) {
		invoices, total, err := f.invoiceService.ListInvoices(ctx, InvoiceListRequest{ClientID: alpha.ID.String()})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, invoices, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		_, total, err := f.invoiceService.ListInvoices(ctx, InvoiceListRequest{Status: model.InvoiceStatusPaid})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("paginates", func(t *testing.T) {
		invoices, total, err := f.invoiceService.ListInvoices(ctx, InvoiceListRequest{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, invoices, 2)
	})
}
