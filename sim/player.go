package sim

import (
	"context"
	"time"

	"github.com/votegrid/votegrid/aggregate"
	"github.com/votegrid/votegrid/internal/clock"
	"golang.org/x/xerrors"
)

// Player steps a simulation on every tick of a clock, from a single
// goroutine.
type Player struct {
	sim      *Simulation
	interval time.Duration
}

// NewPlayer returns a player stepping sim once per interval.
func NewPlayer(sim *Simulation, interval time.Duration) (*Player, error) {
	if interval <= 0 {
		return nil, xerrors.Errorf("interval must be positive, got %s", interval)
	}
	return &Player{sim: sim, interval: interval}, nil
}

// Play steps the simulation on each tick of the clock carried by ctx, calling
// onStep with the step index and its result. It returns once steps steps have
// been taken, or with the context error when ctx is done first. A
// non-positive steps plays until ctx is done.
func (p *Player) Play(ctx context.Context, steps int, onStep func(int, *aggregate.ResultEvent)) error {
	ticker := clock.GetClock(ctx).Ticker(p.interval)
	defer ticker.Stop()
	for step := 0; steps <= 0 || step < steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		metrics.ticks.Add(ctx, 1)
		result := p.sim.Step()
		log.Debugw("Played step", "sim", p.sim.Name(), "step", step, "grid", p.sim.Selector().Index())
		if onStep != nil {
			onStep(step, result)
		}
	}
	return nil
}
