// Package selector drives the aggregation pipeline. A selector holds an
// ordered list of configurations, either grids laid over a population of
// voters or pre-tabulated state elections, and publishes the active one on
// each Update.
package selector

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

var log = logging.Logger("votegrid/selector")

// GridSelector cycles a population of voters through a list of grids.
type GridSelector struct {
	producer.Keyed[Event]

	population *model.Population
	grids      []*grid.Grid
	index      int
}

// GridBuilder constructs a GridSelector. It may be built exactly once.
type GridBuilder struct {
	population *model.Population
	grids      []*grid.Grid
	err        error
	spent      bool
}

// NewGridBuilder returns an empty builder.
func NewGridBuilder() *GridBuilder {
	return &GridBuilder{}
}

func (b *GridBuilder) usable() bool {
	if b.spent {
		b.err = model.ErrBuilderSpent
		return false
	}
	return b.err == nil
}

// SetPopulation sets the voters to assign to cells.
func (b *GridBuilder) SetPopulation(p *model.Population) *GridBuilder {
	switch {
	case !b.usable():
	case p == nil:
		b.err = xerrors.Errorf("nil population: %w", ErrNoPopulation)
	default:
		b.population = p
	}
	return b
}

// AddGrid appends a grid to the configurations the selector cycles through.
func (b *GridBuilder) AddGrid(g *grid.Grid) *GridBuilder {
	switch {
	case !b.usable():
	case g == nil:
		b.err = xerrors.New("nil grid")
	default:
		b.grids = append(b.grids, g)
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *GridBuilder) Err() error { return b.err }

// Build returns the selector. Every voter must lie within the domain of every
// grid, so that Update never fails.
func (b *GridBuilder) Build() (*GridSelector, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	switch {
	case b.err != nil:
		return nil, b.err
	case b.population == nil:
		return nil, ErrNoPopulation
	case len(b.grids) == 0:
		return nil, xerrors.Errorf("grid selector: %w", ErrNoConfigurations)
	}
	for gi, g := range b.grids {
		vi := 0
		for v := range b.population.All() {
			if !g.Contains(v.Position.X, v.Position.Y) {
				return nil, xerrors.Errorf("voter %d at %v, grid %d of %vx%v: %w",
					vi, v.Position, gi, g.Width(), g.Height(), ErrVoterOutsideGrid)
			}
			vi++
		}
	}

	s := &GridSelector{
		population: b.population,
		grids:      b.grids,
		index:      -1,
	}
	s.RegisterEventKey(ChannelVoters)
	s.RegisterEventKey(ChannelGridCells)
	return s, nil
}

// Index returns the index of the active grid, or -1 before the first Update.
func (s *GridSelector) Index() int { return s.index }

// Len returns the number of grids the selector cycles through.
func (s *GridSelector) Len() int { return len(s.grids) }

// Active returns the active grid, or nil before the first Update.
func (s *GridSelector) Active() *grid.Grid {
	if s.index < 0 {
		return nil
	}
	return s.grids[s.index]
}

// Population returns the voters the selector assigns.
func (s *GridSelector) Population() *model.Population { return s.population }

// Update activates the next grid, wrapping around after the last, and
// publishes the voter assignments on ChannelVoters followed by the grid's
// cells on ChannelGridCells. Every subscriber has been called by the time
// Update returns.
func (s *GridSelector) Update() {
	s.index = (s.index + 1) % len(s.grids)
	g := s.grids[s.index]

	voters := make([]VoterState, 0, s.population.Len())
	for v := range s.population.All() {
		// Containment was checked at build time.
		cell, err := g.ComputeCell(v.Position.X, v.Position.Y)
		if err != nil {
			log.Errorw("Voter outside active grid", "index", s.index, "position", v.Position, "err", err)
			continue
		}
		voters = append(voters, VoterState{Voter: v, Cell: cell})
	}
	cells := make([]CellState, 0, g.Rows()*g.Columns())
	for c := range g.Cells() {
		cells = append(cells, CellState{Cell: c})
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(attrKindGrid)
	metrics.updates.Add(ctx, 1, attrs)
	metrics.entities.Record(ctx, int64(len(voters)), attrs)
	metrics.activeIndex.Record(ctx, int64(s.index), attrs)
	log.Debugw("Activated grid", "index", s.index, "rows", g.Rows(), "columns", g.Columns(), "voters", len(voters))

	s.send(ChannelVoters, &VotersEvent{voters: voters})
	s.send(ChannelGridCells, &CellsEvent{rows: g.Rows(), columns: g.Columns(), cells: cells})
}

func (s *GridSelector) send(channel string, e Event) {
	// Both channels are registered at build time.
	if err := s.SendEvent(channel, e); err != nil {
		log.Errorw("Failed to publish", "channel", channel, "err", err)
	}
}
