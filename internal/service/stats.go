package service

import (
	"context"
	"fmt"
	"time"

	"github.com/opensw/calendar-api/internal/domain"
)

// MonthlyProgress reports how many of a month's events are completed,
// counted by start_date. Backs the progress widget on the calendar UI.
// Returns domain.ErrValidation for an out-of-range year or month.
func (s *EventService) MonthlyProgress(ctx context.Context, year, month int) (domain.MonthlyProgress, error) {
	if year < 1 || year > 9999 {
		return domain.MonthlyProgress{}, fmt.Errorf("%w: year must be between 1 and 9999", domain.ErrValidation)
	}
	if month < 1 || month > 12 {
		return domain.MonthlyProgress{}, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrValidation)
	}

	p, err := s.store.Repos().Events.CountMonth(ctx, year, time.Month(month))
	if err != nil {
		return domain.MonthlyProgress{}, fmt.Errorf("service.EventService.MonthlyProgress: %w", err)
	}
	return p, nil
}
