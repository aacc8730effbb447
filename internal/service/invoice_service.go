package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parcelbilling/internal/model"
	"parcelbilling/internal/repository"
	"parcelbilling/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingConfig carries the company-wide billing knobs read at startup.
type BillingConfig struct {
	TaxRate decimal.Decimal // flat tax rate applied to every invoice subtotal
	DueDays int             // days after period end before an unpaid invoice is overdue
}

// --- DTOs ---

type CreateInvoiceRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	PeriodFrom string `json:"period_from" binding:"required"` // YYYY-MM-DD, inclusive
	PeriodTo   string `json:"period_to" binding:"required"`   // YYYY-MM-DD, exclusive
}

type AddManualItemRequest struct {
	Description     string `json:"description" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	UnitPrice       string `json:"unit_price" binding:"required"` // may be negative for discounts
	AdjustmentNotes string `json:"adjustment_notes"`              // customer-visible reason
}

type DeleteItemRequest struct {
	AdjustmentNotes string `json:"adjustment_notes"`
}

// UpdateInvoiceRequest is the operator override surface. A status set here
// sticks until the next item mutation re-derives it.
type UpdateInvoiceRequest struct {
	AmountPaid      *string `json:"amount_paid"`
	Status          *string `json:"status"`
	Note            *string `json:"note"`
	AdjustmentNotes *string `json:"adjustment_notes"`
}

type RecordPaymentRequest struct {
	AmountPaid string `json:"amount_paid" binding:"required"`
}

type InvoiceListRequest struct {
	ClientID  string
	Status    string
	InvoiceNo string
	Page      int
	Limit     int
}

type InvoiceResponse struct {
	ID              string  `json:"id"`
	InvoiceNo       string  `json:"invoice_no"`
	ClientID        string  `json:"client_id"`
	PeriodFrom      string  `json:"period_from"`
	PeriodTo        string  `json:"period_to"`
	DueDate         string  `json:"due_date"`
	Subtotal        string  `json:"subtotal"`
	Taxes           string  `json:"taxes"`
	Total           string  `json:"total"`
	AmountPaid      string  `json:"amount_paid"`
	Balance         string  `json:"balance"`
	Status          string  `json:"status"`
	IsAdjusted      bool    `json:"is_adjusted"`
	AdjustmentNotes string  `json:"adjustment_notes"`
	LastAdjustedAt  *string `json:"last_adjusted_at"`
	Note            string  `json:"note"`
	CreatedAt       string  `json:"created_at"`
}

type InvoiceItemResponse struct {
	ID          string  `json:"id"`
	InvoiceID   string  `json:"invoice_id"`
	ShipmentID  *string `json:"shipment_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   string  `json:"unit_price"`
	Total       string  `json:"total"`
	CreatedAt   string  `json:"created_at"`
}

type InvoiceDetailsResponse struct {
	Invoice InvoiceResponse       `json:"invoice"`
	Items   []InvoiceItemResponse `json:"items"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest, userID string) (InvoiceResponse, error)
	GetInvoiceDetails(ctx context.Context, id string) (InvoiceDetailsResponse, error)
	ListInvoices(ctx context.Context, req InvoiceListRequest) ([]InvoiceResponse, int64, error)
	AddManualItem(ctx context.Context, invoiceID string, req AddManualItemRequest, userID string) (InvoiceItemResponse, error)
	DeleteItem(ctx context.Context, invoiceID, itemID string, req DeleteItemRequest, userID string) error
	UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest, userID string) (InvoiceResponse, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, userID string) (InvoiceResponse, error)
	// BillShipment runs the automatic per-shipment billing flow: count the
	// client's shipments for the month, rate the shipment, append the charge
	// to the period's invoice and reconcile, all in one serializable
	// transaction.
	BillShipment(ctx context.Context, shipmentID string) (InvoiceItemResponse, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	itemRepo     repository.InvoiceItemRepository
	clientRepo   repository.ClientRepository
	shipmentRepo repository.ShipmentRepository
	rateService  RateService
	txManager    repository.TransactionManager
	db           *gorm.DB
	hub          *websocket.Hub // nil disables event broadcasting
	cfg          BillingConfig
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	clientRepo repository.ClientRepository,
	shipmentRepo repository.ShipmentRepository,
	rateService RateService,
	txManager repository.TransactionManager,
	db *gorm.DB,
	hub *websocket.Hub,
	cfg BillingConfig,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		clientRepo:   clientRepo,
		shipmentRepo: shipmentRepo,
		rateService:  rateService,
		txManager:    txManager,
		db:           db,
		hub:          hub,
		cfg:          cfg,
	}
}

// --- Periods ---

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, userID string) (InvoiceResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}

	periodFrom, err := time.Parse("2006-01-02", req.PeriodFrom)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid period_from: %w", err)
	}
	periodTo, err := time.Parse("2006-01-02", req.PeriodTo)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid period_to: %w", err)
	}
	if !periodTo.After(periodFrom) {
		return InvoiceResponse{}, fmt.Errorf("period_to must be after period_from")
	}

	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, ErrClientNotFound
		}
		return InvoiceResponse{}, fmt.Errorf("failed to fetch client: %w", err)
	}

	var invoice model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		overlapping, countErr := s.invoiceRepo.CountOverlappingPeriod(txCtx, clientID, periodFrom, periodTo)
		if countErr != nil {
			return fmt.Errorf("failed to check period overlap: %w", countErr)
		}
		if overlapping > 0 {
			return ErrPeriodOverlap
		}

		invoiceNo, noErr := s.generateInvoiceNo(txCtx)
		if noErr != nil {
			return fmt.Errorf("failed to generate invoice number: %w", noErr)
		}

		invoice = model.Invoice{
			InvoiceNo:  invoiceNo,
			ClientID:   clientID,
			PeriodFrom: periodFrom,
			PeriodTo:   periodTo,
			DueDate:    periodTo.AddDate(0, 0, s.cfg.DueDays),
			Subtotal:   decimal.Zero,
			Taxes:      decimal.Zero,
			Total:      decimal.Zero,
			AmountPaid: decimal.Zero,
			Balance:    decimal.Zero,
			Status:     model.InvoiceStatusPending,
		}
		return s.invoiceRepo.Create(txCtx, &invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	writeAuditLog(ctx, s.db, userID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNo, req)

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoiceDetails(ctx context.Context, id string) (InvoiceDetailsResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceDetailsResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithItems(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceDetailsResponse{}, ErrInvoiceNotFound
		}
		return InvoiceDetailsResponse{}, fmt.Errorf("failed to fetch invoice: %w", err)
	}

	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, toInvoiceItemResponse(item))
	}

	return InvoiceDetailsResponse{
		Invoice: toInvoiceResponse(*invoice),
		Items:   items,
	}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, req InvoiceListRequest) ([]InvoiceResponse, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	filter := repository.InvoiceListFilter{
		Status:    req.Status,
		InvoiceNo: req.InvoiceNo,
		Page:      req.Page,
		Limit:     req.Limit,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid client_id: %w", err)
		}
		filter.ClientID = &clientID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// --- Ledger ---

func (s *invoiceService) AddManualItem(ctx context.Context, invoiceID string, req AddManualItemRequest, userID string) (InvoiceItemResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return InvoiceItemResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return InvoiceItemResponse{}, fmt.Errorf("invalid unit_price: %w", err)
	}
	if req.Quantity < 1 {
		return InvoiceItemResponse{}, fmt.Errorf("quantity must be at least 1")
	}

	var item model.InvoiceItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.lockInvoice(txCtx, id)
		if findErr != nil {
			return findErr
		}

		item = model.InvoiceItem{
			InvoiceID:   id,
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice,
			Total:       unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		}
		if createErr := s.itemRepo.Create(txCtx, &item); createErr != nil {
			return fmt.Errorf("failed to create invoice item: %w", createErr)
		}

		s.markAdjusted(invoice, req.AdjustmentNotes)
		return s.recompute(txCtx, invoice, true)
	})
	if err != nil {
		return InvoiceItemResponse{}, err
	}

	writeAuditLog(ctx, s.db, userID, model.ActionAddManualItem, item.ID.String(), req.Description, req)
	s.broadcast("invoice.adjusted", map[string]string{"invoice_id": invoiceID, "item_id": item.ID.String()})

	return toInvoiceItemResponse(item), nil
}

func (s *invoiceService) DeleteItem(ctx context.Context, invoiceID, itemID string, req DeleteItemRequest, userID string) error {
	invID, err := uuid.Parse(invoiceID)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}
	itmID, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	var deleted model.InvoiceItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.lockInvoice(txCtx, invID)
		if findErr != nil {
			return findErr
		}

		item, itemErr := s.itemRepo.FindByID(txCtx, itmID)
		if itemErr != nil {
			if errors.Is(itemErr, gorm.ErrRecordNotFound) {
				return ErrInvoiceItemNotFound
			}
			return fmt.Errorf("failed to fetch invoice item: %w", itemErr)
		}
		if item.InvoiceID != invID {
			return ErrInvoiceItemNotFound
		}
		if item.ShipmentID != nil {
			return ErrCannotDeleteAutoItem
		}

		if delErr := s.itemRepo.Delete(txCtx, item); delErr != nil {
			return fmt.Errorf("failed to delete invoice item: %w", delErr)
		}
		deleted = *item

		s.markAdjusted(invoice, req.AdjustmentNotes)
		return s.recompute(txCtx, invoice, true)
	})
	if err != nil {
		return err
	}

	writeAuditLog(ctx, s.db, userID, model.ActionDeleteManualItem, itemID, deleted.Description, map[string]string{
		"invoice_id": invoiceID,
		"total":      deleted.Total.StringFixed(2),
	})
	s.broadcast("invoice.adjusted", map[string]string{"invoice_id": invoiceID, "item_id": itemID})

	return nil
}

// --- Operator overrides and payments ---

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest, userID string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	if req.Status != nil {
		switch *req.Status {
		case model.InvoiceStatusPending, model.InvoiceStatusPaid, model.InvoiceStatusOverdue:
		default:
			return InvoiceResponse{}, fmt.Errorf("invalid status %q", *req.Status)
		}
	}

	var amountPaid *decimal.Decimal
	if req.AmountPaid != nil {
		parsed, parseErr := decimal.NewFromString(*req.AmountPaid)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid amount_paid: %w", parseErr)
		}
		amountPaid = &parsed
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.lockInvoice(txCtx, invoiceID)
		if findErr != nil {
			return findErr
		}

		if amountPaid != nil {
			invoice.AmountPaid = *amountPaid
			invoice.Balance = invoice.Total.Sub(invoice.AmountPaid)
		}

		switch {
		case req.Status != nil:
			// forced status sticks until the next item mutation re-derives it
			invoice.Status = *req.Status
		case amountPaid != nil:
			invoice.Status = deriveStatus(invoice.Balance, invoice.DueDate, time.Now())
		}

		if req.Note != nil {
			invoice.Note = *req.Note
		}
		if req.AdjustmentNotes != nil {
			s.markAdjusted(invoice, *req.AdjustmentNotes)
		}

		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	writeAuditLog(ctx, s.db, userID, model.ActionAdjustInvoice, invoice.ID.String(), invoice.InvoiceNo, req)
	s.broadcast("invoice.updated", map[string]string{"invoice_id": id, "status": invoice.Status})

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, userID string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	amountPaid, err := decimal.NewFromString(req.AmountPaid)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid amount_paid: %w", err)
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.lockInvoice(txCtx, invoiceID)
		if findErr != nil {
			return findErr
		}

		invoice.AmountPaid = amountPaid
		invoice.Balance = invoice.Total.Sub(amountPaid)
		invoice.Status = deriveStatus(invoice.Balance, invoice.DueDate, time.Now())

		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	writeAuditLog(ctx, s.db, userID, model.ActionRecordPayment, invoice.ID.String(), invoice.InvoiceNo, req)
	s.broadcast("invoice.paid", map[string]string{"invoice_id": id, "status": invoice.Status, "balance": invoice.Balance.StringFixed(2)})

	return toInvoiceResponse(*invoice), nil
}

// --- Automatic billing flow ---

func (s *invoiceService) BillShipment(ctx context.Context, shipmentID string) (InvoiceItemResponse, error) {
	id, err := uuid.Parse(shipmentID)
	if err != nil {
		return InvoiceItemResponse{}, fmt.Errorf("invalid shipment id: %w", err)
	}

	var item model.InvoiceItem
	err = s.txManager.RunInSerializableTx(ctx, func(txCtx context.Context) error {
		shipment, findErr := s.shipmentRepo.FindByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrShipmentNotFound
			}
			return fmt.Errorf("failed to fetch shipment: %w", findErr)
		}

		client, clientErr := s.clientRepo.FindByID(txCtx, shipment.ClientID)
		if clientErr != nil {
			if errors.Is(clientErr, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to fetch client: %w", clientErr)
		}

		if shipment.CodRequired && !client.CodAllowed {
			return ErrCodNotAllowed
		}

		// count shipments created before this one within its calendar month;
		// the serializable transaction makes concurrent billings observe a
		// consistent, gapless count
		monthStart := time.Date(shipment.CreatedAt.Year(), shipment.CreatedAt.Month(), 1, 0, 0, 0, 0, shipment.CreatedAt.Location())
		monthlyCount, countErr := s.shipmentRepo.CountForClient(txCtx, shipment.ClientID, monthStart, shipment.CreatedAt)
		if countErr != nil {
			return fmt.Errorf("failed to count monthly shipments: %w", countErr)
		}

		rate, rateErr := s.rateService.RateShipment(txCtx, client, shipment.ServiceType, shipment.Weight, Dimensions{
			Length: shipment.Length,
			Width:  shipment.Width,
			Height: shipment.Height,
		}, monthlyCount)
		if rateErr != nil {
			return rateErr
		}

		found, invErr := s.invoiceRepo.FindForClientDate(txCtx, shipment.ClientID, shipment.CreatedAt)
		if invErr != nil {
			if errors.Is(invErr, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return fmt.Errorf("failed to resolve invoice period: %w", invErr)
		}
		invoice, lockErr := s.lockInvoice(txCtx, found.ID)
		if lockErr != nil {
			return lockErr
		}

		exists, dupErr := s.itemRepo.ExistsForShipment(txCtx, invoice.ID, shipment.ID)
		if dupErr != nil {
			return fmt.Errorf("failed to check for existing charge: %w", dupErr)
		}
		if exists {
			return ErrDuplicateShipmentItem
		}

		charge := rate.TotalRate
		description := fmt.Sprintf("Shipment %s (%s, %s kg)", shortID(shipment.ID), shipment.ServiceType, rate.ChargeableWeight.StringFixed(1))
		if shipment.CodRequired {
			fee, feeErr := CodFee(shipment.CodAmount)
			if feeErr != nil {
				return feeErr
			}
			charge = charge.Add(fee)
			description += " incl. COD fee"
		}

		item = model.InvoiceItem{
			InvoiceID:   invoice.ID,
			ShipmentID:  &shipment.ID,
			Description: description,
			Quantity:    1,
			UnitPrice:   charge,
			Total:       charge,
		}
		if createErr := s.itemRepo.Create(txCtx, &item); createErr != nil {
			return fmt.Errorf("failed to create shipment charge: %w", createErr)
		}

		// automatic billing is not an adjustment
		return s.recompute(txCtx, invoice, true)
	})
	if err != nil {
		return InvoiceItemResponse{}, err
	}

	writeAuditLog(ctx, s.db, "", model.ActionBillShipment, shipmentID, item.Description, map[string]string{
		"invoice_id": item.InvoiceID.String(),
		"total":      item.Total.StringFixed(2),
	})
	s.broadcast("invoice.billed", map[string]string{"invoice_id": item.InvoiceID.String(), "shipment_id": shipmentID})

	return toInvoiceItemResponse(item), nil
}

// --- Reconciler ---

// recompute re-derives every computed invoice field from the item set. It
// must run inside the same transaction as the mutation that made the fields
// stale; a partially updated invoice is never observable.
func (s *invoiceService) recompute(txCtx context.Context, invoice *model.Invoice, deriveStatusField bool) error {
	items, err := s.itemRepo.ListByInvoice(txCtx, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to list invoice items: %w", err)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}

	taxes := subtotal.Mul(s.cfg.TaxRate).Round(2)
	if taxes.IsNegative() {
		// credit-heavy invoices do not generate negative tax
		taxes = decimal.Zero
	}

	invoice.Subtotal = subtotal
	invoice.Taxes = taxes
	invoice.Total = subtotal.Add(taxes)
	invoice.Balance = invoice.Total.Sub(invoice.AmountPaid)
	if deriveStatusField {
		invoice.Status = deriveStatus(invoice.Balance, invoice.DueDate, time.Now())
	}

	return s.invoiceRepo.Update(txCtx, invoice)
}

func deriveStatus(balance decimal.Decimal, dueDate, now time.Time) string {
	if balance.LessThanOrEqual(decimal.Zero) {
		return model.InvoiceStatusPaid
	}
	if now.After(dueDate) {
		return model.InvoiceStatusOverdue
	}
	return model.InvoiceStatusPending
}

// --- Adjustment auditing ---

// markAdjusted flags the invoice as manually adjusted. Notes replace the
// previous explanation and are never cleared automatically; there is no
// un-adjust.
func (s *invoiceService) markAdjusted(invoice *model.Invoice, notes string) {
	now := time.Now()
	invoice.IsAdjusted = true
	invoice.LastAdjustedAt = &now
	if notes != "" {
		invoice.AdjustmentNotes = notes
	}
}

// --- Helpers ---

func (s *invoiceService) lockInvoice(txCtx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) generateInvoiceNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "INV-" + today + "-"

	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *invoiceService) broadcast(event string, payload map[string]string) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{"event": event, "data": payload})
	if err != nil {
		return
	}
	s.hub.Broadcast <- msg
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              inv.ID.String(),
		InvoiceNo:       inv.InvoiceNo,
		ClientID:        inv.ClientID.String(),
		PeriodFrom:      inv.PeriodFrom.Format("2006-01-02"),
		PeriodTo:        inv.PeriodTo.Format("2006-01-02"),
		DueDate:         inv.DueDate.Format("2006-01-02"),
		Subtotal:        inv.Subtotal.StringFixed(2),
		Taxes:           inv.Taxes.StringFixed(2),
		Total:           inv.Total.StringFixed(2),
		AmountPaid:      inv.AmountPaid.StringFixed(2),
		Balance:         inv.Balance.StringFixed(2),
		Status:          inv.Status,
		IsAdjusted:      inv.IsAdjusted,
		AdjustmentNotes: inv.AdjustmentNotes,
		Note:            inv.Note,
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.LastAdjustedAt != nil {
		t := inv.LastAdjustedAt.Format(time.RFC3339)
		resp.LastAdjustedAt = &t
	}
	return resp
}

func toInvoiceItemResponse(item model.InvoiceItem) InvoiceItemResponse {
	resp := InvoiceItemResponse{
		ID:          item.ID.String(),
		InvoiceID:   item.InvoiceID.String(),
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice.StringFixed(2),
		Total:       item.Total.StringFixed(2),
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
	}
	if item.ShipmentID != nil {
		s := item.ShipmentID.String()
		resp.ShipmentID = &s
	}
	return resp
}
