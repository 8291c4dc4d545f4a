package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensw/calendar-api/internal/domain"
	"github.com/opensw/calendar-api/internal/service"
)

func TestEventService_MonthlyProgress_OK(t *testing.T) {
	events := &mockEventRepo{
		countMonth: func(_ context.Context, year int, month time.Month) (domain.MonthlyProgress, error) {
			assert.Equal(t, 2024, year)
			assert.Equal(t, time.June, month)
			return domain.MonthlyProgress{Total: 7, Completed: 3}, nil
		},
	}
	svc := service.NewEventService(newFakeStore(events, &mockTagRepo{}))

	got, err := svc.MonthlyProgress(context.Background(), 2024, 6)

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Total)
	assert.Equal(t, int64(3), got.Completed)
}

func TestEventService_MonthlyProgress_OutOfRange(t *testing.T) {
	svc := service.NewEventService(newFakeStore(&mockEventRepo{}, &mockTagRepo{}))
	ctx := context.Background()

	cases := []struct{ year, month int }{
		{0, 6},
		{10000, 6},
		{2024, 0},
		{2024, 13},
	}
	for _, tc := range cases {
		_, err := svc.MonthlyProgress(ctx, tc.year, tc.month)
		assert.ErrorIs(t, err, domain.ErrValidation, "year=%d month=%d", tc.year, tc.month)
	}
}
