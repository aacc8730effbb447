package handler

import (
	"errors"
	"net/http"

	"parcelbilling/internal/service"
)

// statusFor maps the service error taxonomy onto HTTP codes. Messages are
// surfaced verbatim to admin tooling; there is no fallback pricing and no
// automatic retry, so the caller must see exactly what went wrong.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrInvoiceItemNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrShipmentNotFound),
		errors.Is(err, service.ErrTierNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateShipmentItem),
		errors.Is(err, service.ErrCannotDeleteAutoItem),
		errors.Is(err, service.ErrPeriodOverlap),
		errors.Is(err, service.ErrTierOverlap):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoMatchingTier),
		errors.Is(err, service.ErrWeightExceedsMaxTier),
		errors.Is(err, service.ErrCodNotAllowed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
