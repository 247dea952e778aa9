package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// maxSalesRangeDays caps the report length so a single request cannot ask for
// an unbounded gap-filled series.
const maxSalesRangeDays = 366

// SalesService computes per-day sales reports.
type SalesService struct {
	orders ports.OrderRepository
	cache  ports.SalesCache
	logger zerolog.Logger
}

// NewSalesService returns a SalesService. cache may be nil.
func NewSalesService(orders ports.OrderRepository, cache ports.SalesCache, logger zerolog.Logger) *SalesService {
	return &SalesService{orders: orders, cache: cache, logger: logger}
}

// ComputeSales returns the gap-filled report for the UTC calendar days from
// startDate through endDate inclusive.
func (s *SalesService) ComputeSales(ctx context.Context, startDate, endDate string) (*domain.SalesReport, error) {
	from, to, err := SalesRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	fromKey, toKey := from.Format(domain.DateLayout), to.Format(domain.DateLayout)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, fromKey, toKey)
		if err != nil {
			s.logger.Warn().Err(err).Msg("sales cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	buckets, err := s.orders.DailySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("compute sales: %w", err)
	}
	report := FillSalesGaps(from, to, buckets)

	if s.cache != nil {
		if err := s.cache.Set(ctx, fromKey, toKey, report); err != nil {
			s.logger.Warn().Err(err).Msg("sales cache write failed")
		}
	}

	s.logger.Debug().
		Str("from", fromKey).
		Str("to", toKey).
		Int("orders", report.TotalNumOrders).
		Msg("sales report computed")
	return report, nil
}

// SalesRange parses the report bounds and widens them to whole UTC days:
// start at 00:00:00.000, end at 23:59:59.999.
func SalesRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := parseDay(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Validationf("invalid startDate %q", startDate)
	}
	end, err := parseDay(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Validationf("invalid endDate %q", endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, domain.Validation("startDate must not be after endDate")
	}
	if end.Sub(start) >= maxSalesRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, domain.Validationf("date range cannot exceed %d days", maxSalesRangeDays)
	}

	return start, end.Add(24*time.Hour - time.Millisecond), nil
}

func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FillSalesGaps lays buckets over every calendar day from from through to,
// emitting zero entries for days without orders.
func FillSalesGaps(from, to time.Time, buckets []ports.DailyBucket) *domain.SalesReport {
	byDate := make(map[string]ports.DailyBucket, len(buckets))
	report := &domain.SalesReport{}
	for _, b := range buckets {
		byDate[b.Date] = b
		report.TotalSales += b.Sales
		report.TotalNumOrders += b.NumOrders
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(to) {
		key := day.Format(domain.DateLayout)
		b := byDate[key]
		report.Sales = append(report.Sales, domain.DailySales{
			Date:      key,
			Sales:     b.Sales,
			NumOrders: b.NumOrders,
		})
		day = day.AddDate(0, 0, 1)
	}
	return report
}
