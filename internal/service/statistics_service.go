package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// --- DTOs ---

type BillingDataPoint struct {
	Period       string `json:"period"`
	InvoiceCount int64  `json:"invoice_count"`
	TotalBilled  string `json:"total_billed"`
	TotalTaxes   string `json:"total_taxes"`
	TotalPaid    string `json:"total_paid"`
	Outstanding  string `json:"outstanding"`
}

type BillingStatsFilter struct {
	GroupBy   string // week, month, quarter, year
	StartDate string // RFC3339
	EndDate   string // RFC3339
}

// --- Interface ---

type StatisticsService interface {
	GetBillingStatistics(ctx context.Context, filter BillingStatsFilter) ([]BillingDataPoint, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// --- Implementation ---

// GetBillingStatistics aggregates invoiced totals per period. Raw SQL with
// DATE_TRUNC, so this path is postgres-only.
func (s *statisticsService) GetBillingStatistics(ctx context.Context, filter BillingStatsFilter) ([]BillingDataPoint, error) {
	groupBy := filter.GroupBy
	switch groupBy {
	case "week", "month", "quarter", "year":
		// valid
	default:
		groupBy = "month"
	}

	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, i.period_from), 'YYYY-MM-DD') AS period,
			COUNT(*) AS invoice_count,
			COALESCE(SUM(i.total), 0) AS total_billed,
			COALESCE(SUM(i.taxes), 0) AS total_taxes,
			COALESCE(SUM(i.amount_paid), 0) AS total_paid,
			COALESCE(SUM(i.balance), 0) AS outstanding
		FROM invoices i
		WHERE i.period_from >= $2::timestamptz
		  AND i.period_from <= $3::timestamptz
		GROUP BY DATE_TRUNC($1, i.period_from)
		ORDER BY period
	`

	type rawResult struct {
		Period       string  `gorm:"column:period"`
		InvoiceCount int64   `gorm:"column:invoice_count"`
		TotalBilled  float64 `gorm:"column:total_billed"`
		TotalTaxes   float64 `gorm:"column:total_taxes"`
		TotalPaid    float64 `gorm:"column:total_paid"`
		Outstanding  float64 `gorm:"column:outstanding"`
	}

	var rows []rawResult
	if err := s.db.WithContext(ctx).Raw(query,
		groupBy,
		filter.StartDate,
		filter.EndDate,
	).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query billing statistics: %w", err)
	}

	result := make([]BillingDataPoint, 0, len(rows))
	for _, r := range rows {
		result = append(result, BillingDataPoint{
			Period:       r.Period,
			InvoiceCount: r.InvoiceCount,
			TotalBilled:  fmt.Sprintf("%.2f", r.TotalBilled),
			TotalTaxes:   fmt.Sprintf("%.2f", r.TotalTaxes),
			TotalPaid:    fmt.Sprintf("%.2f", r.TotalPaid),
			Outstanding:  fmt.Sprintf("%.2f", r.Outstanding),
		})
	}

	return result, nil
}
