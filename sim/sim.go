// Package sim wires a complete districting pipeline around a generated
// population: a grid selector cycling through plans, a result aggregator, and
// a district aggregator fed by a hover feed.
package sim

import (
	"context"
	"errors"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/votegrid/votegrid/aggregate"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
	"golang.org/x/xerrors"
)

var log = logging.Logger("votegrid/sim")

// ErrNotStarted signals that a simulation was used before its first Step.
var ErrNotStarted = errors.New("simulation has not stepped yet")

// Simulation runs the grid pipeline over a generated population.
type Simulation struct {
	name     string
	selector *selector.GridSelector
	results  *aggregate.GridResultAggregator
	hovers   *aggregate.HoverFeed
	focus    *aggregate.DistrictAggregator

	mu        sync.Mutex
	lastFocus *aggregate.DistrictFocusEvent
}

// NewSimulation builds the pipeline described by the options.
func NewSimulation(o ...Option) (*Simulation, error) {
	opts, err := newOptions(o...)
	if err != nil {
		return nil, err
	}

	population := opts.population
	if population == nil {
		population, err = NewGenerator(opts.seed).Population(opts.voterCount, opts.width, opts.height,
			opts.field, opts.parties[0], opts.parties[1])
		if err != nil {
			return nil, xerrors.Errorf("generating population: %w", err)
		}
	}

	sb := selector.NewGridBuilder().SetPopulation(population)
	for i, ids := range opts.grids {
		g, err := grid.FromArray(ids, opts.width, opts.height)
		if err != nil {
			return nil, xerrors.Errorf("grid %d: %w", i, err)
		}
		sb.AddGrid(g)
	}
	gs, err := sb.Build()
	if err != nil {
		return nil, xerrors.Errorf("building selector: %w", err)
	}
	results, err := aggregate.NewGridResultAggregator(gs)
	if err != nil {
		return nil, xerrors.Errorf("building result aggregator: %w", err)
	}
	hovers := aggregate.NewHoverFeed()
	focus, err := aggregate.NewDistrictAggregatorBuilder().
		SetDistrictSource(hovers).
		SetResultSource(results).
		Build()
	if err != nil {
		return nil, xerrors.Errorf("building district aggregator: %w", err)
	}

	s := &Simulation{
		name:     opts.name,
		selector: gs,
		results:  results,
		hovers:   hovers,
		focus:    focus,
	}
	focus.Subscribe(producer.NewID("sim"), s.onFocus)
	log.Debugw("Created simulation", "name", s.name, "voters", population.Len(), "grids", gs.Len())
	return s, nil
}

func (s *Simulation) onFocus(e aggregate.DistrictFocusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFocus = &e
}

// Name returns the name the simulation is reported under.
func (s *Simulation) Name() string { return s.name }

// Selector returns the selector driving the simulation.
func (s *Simulation) Selector() *selector.GridSelector { return s.selector }

// Results returns the aggregator tabulating each step.
func (s *Simulation) Results() *aggregate.GridResultAggregator { return s.results }

// Hovers returns the feed hover positions are published on.
func (s *Simulation) Hovers() *aggregate.HoverFeed { return s.hovers }

// Population returns the simulated voters.
func (s *Simulation) Population() *model.Population { return s.selector.Population() }

// Step activates the next grid and returns the resulting tabulation.
func (s *Simulation) Step() *aggregate.ResultEvent {
	s.selector.Update()
	result := s.results.Latest()
	metrics.steps.Add(context.Background(), 1)
	return result
}

// Latest returns the tabulation of the latest step, or nil before the first.
func (s *Simulation) Latest() *aggregate.ResultEvent { return s.results.Latest() }

// Hover moves the pointer to x, y over the active grid and returns the
// resulting focus, if the district aggregator emitted one.
func (s *Simulation) Hover(x, y float64) (aggregate.DistrictFocusEvent, bool, error) {
	active := s.selector.Active()
	if active == nil {
		return aggregate.DistrictFocusEvent{}, false, ErrNotStarted
	}
	if err := s.hovers.MoveOver(active, x, y); err != nil {
		return aggregate.DistrictFocusEvent{}, false, err
	}
	e, ok := s.Focus()
	return e, ok, nil
}

// Focus returns the latest district focus event, if any.
func (s *Simulation) Focus() (aggregate.DistrictFocusEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFocus == nil {
		return aggregate.DistrictFocusEvent{}, false
	}
	return *s.lastFocus, true
}

// Close detaches the aggregators from their sources.
func (s *Simulation) Close() error {
	return errors.Join(s.focus.Close(), s.results.Close())
}
