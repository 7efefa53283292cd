package request

import (
	"context"
	"time"

	"github.com/medstock/medstock/internal/domain/shared"
)

// Reporting period kinds.
const (
	PeriodWeekly  = "semanal"
	PeriodMonthly = "mensual"
	PeriodAnnual  = "anual"
)

// PeriodRange resolves the reporting window containing anchor. Weekly is the
// ISO week, Monday through Sunday. The end bound is exclusive.
func PeriodRange(kind string, anchor time.Time) (time.Time, time.Time, error) {
	y, m, d := anchor.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, anchor.Location())

	switch kind {
	case PeriodWeekly:
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := day.AddDate(0, 0, 1-weekday)
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(0, 1, 0), nil
	case PeriodAnnual:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, shared.Validationf("unknown period %q", kind)
}

// Usage aggregates per-item requested and supplied quantities over the
// period containing anchor, most requested first.
func (s *Service) Usage(ctx context.Context, kind string, anchor time.Time) ([]*ItemUsage, error) {
	start, end, err := PeriodRange(kind, anchor)
	if err != nil {
		return nil, err
	}
	return s.requests.Aggregate(ctx, start, end)
}

// UnfulfilledUsage totals, per item, the quantities requested but never
// supplied during the period containing anchor, largest total first.
func (s *Service) UnfulfilledUsage(ctx context.Context, kind string, anchor time.Time) ([]*UnfulfilledItem, error) {
	start, end, err := PeriodRange(kind, anchor)
	if err != nil {
		return nil, err
	}
	return s.requests.Unfulfilled(ctx, start, end)
}
