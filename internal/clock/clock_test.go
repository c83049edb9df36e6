package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/internal/clock"
)

func TestGetClock(t *testing.T) {
	t.Run("real by default", func(t *testing.T) {
		clk := clock.GetClock(context.Background())
		require.WithinDuration(t, time.Now(), clk.Now(), time.Minute)
	})
	t.Run("mock from context", func(t *testing.T) {
		ctx, mock := clock.WithMockClock(context.Background())
		require.Same(t, mock, clock.GetClock(ctx))
		mock.Add(time.Hour)
		require.True(t, time.Unix(0, 0).Add(time.Hour).Equal(clock.GetClock(ctx).Now()))
	})
}
