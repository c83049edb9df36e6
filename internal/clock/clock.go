// Package clock carries the clock used by time-driven components in a
// context, so that tests can substitute a mock.
package clock

import (
	"context"

	"github.com/benbjohnson/clock"
)

type Clock = clock.Clock
type Mock = clock.Mock
type Ticker = clock.Ticker

type clockKeyType struct{}

var clockKey = clockKeyType{}

// NewMock returns an instance of a mock clock.
// The current time of the mock clock on initialization is the Unix epoch.
func NewMock() *Mock {
	return clock.NewMock()
}

// WithClock embeds clk in the context.
func WithClock(ctx context.Context, clk Clock) context.Context {
	return context.WithValue(ctx, clockKey, clk)
}

// WithMockClock embeds a new mock clock in the context and returns it.
func WithMockClock(ctx context.Context) (context.Context, *Mock) {
	clk := clock.NewMock()
	return WithClock(ctx, clk), clk
}

var realClock = clock.New()

// GetClock either retrieves the clock from the context or returns a realtime
// clock.
func GetClock(ctx context.Context) Clock {
	if clk, ok := ctx.Value(clockKey).(Clock); ok {
		return clk
	}
	return realClock
}
