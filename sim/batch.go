package sim

import (
	"context"

	"github.com/votegrid/votegrid/aggregate"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Summary holds the results of one simulation run in a batch.
type Summary struct {
	Name    string
	Results []*aggregate.ResultEvent
}

// RunAll steps every simulation steps times, in parallel, one goroutine per
// simulation. Simulations must not share state. Summaries are returned in the
// order of sims.
func RunAll(ctx context.Context, sims []*Simulation, steps int) ([]Summary, error) {
	if steps <= 0 {
		return nil, xerrors.Errorf("steps must be positive, got %d", steps)
	}
	summaries := make([]Summary, len(sims))
	eg, ctx := errgroup.WithContext(ctx)
	for i, sim := range sims {
		eg.Go(func() error {
			summary := Summary{Name: sim.Name(), Results: make([]*aggregate.ResultEvent, 0, steps)}
			for range steps {
				if err := ctx.Err(); err != nil {
					return xerrors.Errorf("running %s: %w", sim.Name(), err)
				}
				summary.Results = append(summary.Results, sim.Step())
			}
			summaries[i] = summary
			metrics.batchRuns.Add(ctx, 1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
