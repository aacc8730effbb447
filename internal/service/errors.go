package service

import "errors"

// Configuration errors: the rate catalog has a gap. These must reach an
// operator; the calculator never falls back to a guessed tier.
var (
	ErrNoMatchingTier       = errors.New("no active tier matches the monthly shipment volume")
	ErrWeightExceedsMaxTier = errors.New("chargeable weight exceeds every active weight tier")
	ErrTierNotFound         = errors.New("rate tier not found or inactive")
)

// Input errors: caller mistakes, rejected before any state change.
var (
	ErrInvalidWeight = errors.New("chargeable weight must be greater than zero")
	ErrInvalidAmount = errors.New("cod amount must be greater than zero")
)

// State errors: misuse of ledger invariants.
var (
	ErrDuplicateShipmentItem = errors.New("shipment is already billed on this invoice")
	ErrCannotDeleteAutoItem  = errors.New("shipment-generated items cannot be deleted")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrInvoiceItemNotFound   = errors.New("invoice item not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrShipmentNotFound      = errors.New("shipment not found")
	ErrCodNotAllowed         = errors.New("client is not enabled for cash on delivery")
	ErrPeriodOverlap         = errors.New("billing period overlaps an existing invoice for this client")
	ErrTierOverlap           = errors.New("tier range overlaps an existing active tier")
)
