package selector

import (
	"context"

	"github.com/votegrid/votegrid/election"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// MapSelector cycles through a list of state elections, publishing the
// pre-tabulated district, precinct and statewide records of the active one.
type MapSelector struct {
	producer.Keyed[Event]

	states []mapConfiguration
	index  int
}

type mapConfiguration struct {
	state     *election.State
	districts []DistrictState
	precincts []PrecinctState
}

// MapBuilder constructs a MapSelector. It may be built exactly once.
type MapBuilder struct {
	states []*election.State
	err    error
	spent  bool
}

// NewMapBuilder returns an empty builder.
func NewMapBuilder() *MapBuilder {
	return &MapBuilder{}
}

// AddState appends a state election to the configurations the selector cycles
// through.
func (b *MapBuilder) AddState(s *election.State) *MapBuilder {
	switch {
	case b.spent:
		b.err = model.ErrBuilderSpent
	case b.err != nil:
	case s == nil:
		b.err = xerrors.New("nil state")
	default:
		b.states = append(b.states, s)
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *MapBuilder) Err() error { return b.err }

// Build returns the selector, resolving the district of every precinct up
// front.
func (b *MapBuilder) Build() (*MapSelector, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	switch {
	case b.err != nil:
		return nil, b.err
	case len(b.states) == 0:
		return nil, xerrors.Errorf("map selector: %w", ErrNoConfigurations)
	}

	s := &MapSelector{
		states: make([]mapConfiguration, 0, len(b.states)),
		index:  -1,
	}
	for si, state := range b.states {
		config := mapConfiguration{state: state}
		for _, d := range state.Districts() {
			config.districts = append(config.districts, DistrictState{District: d})
		}
		for pi, p := range state.Precincts() {
			district, assigned, err := state.DistrictOf(pi)
			if err != nil {
				return nil, xerrors.Errorf("resolving precinct %s of state %d: %w", p.ID, si, err)
			}
			config.precincts = append(config.precincts, PrecinctState{
				Precinct: p,
				District: district,
				Assigned: assigned,
			})
		}
		s.states = append(s.states, config)
	}
	s.RegisterEventKey(ChannelDistricts)
	s.RegisterEventKey(ChannelPrecincts)
	s.RegisterEventKey(ChannelStatewide)
	return s, nil
}

// Index returns the index of the active state, or -1 before the first Update.
func (s *MapSelector) Index() int { return s.index }

// Len returns the number of states the selector cycles through.
func (s *MapSelector) Len() int { return len(s.states) }

// Active returns the active state, or nil before the first Update.
func (s *MapSelector) Active() *election.State {
	if s.index < 0 {
		return nil
	}
	return s.states[s.index].state
}

// Update activates the next state, wrapping around after the last, and
// publishes its records on ChannelDistricts, ChannelPrecincts and
// ChannelStatewide, in that order.
func (s *MapSelector) Update() {
	s.index = (s.index + 1) % len(s.states)
	config := s.states[s.index]

	ctx := context.Background()
	attrs := metric.WithAttributes(attrKindMap)
	metrics.updates.Add(ctx, 1, attrs)
	metrics.entities.Record(ctx, int64(len(config.precincts)), attrs)
	metrics.activeIndex.Record(ctx, int64(s.index), attrs)
	log.Debugw("Activated state", "index", s.index, "districts", len(config.districts), "precincts", len(config.precincts))

	for _, send := range []struct {
		channel string
		event   Event
	}{
		{ChannelDistricts, &DistrictsEvent{districts: append([]DistrictState(nil), config.districts...)}},
		{ChannelPrecincts, &PrecinctsEvent{precincts: append([]PrecinctState(nil), config.precincts...)}},
		{ChannelStatewide, &StatewideEvent{Votes: config.state.Statewide()}},
	} {
		if err := s.SendEvent(send.channel, send.event); err != nil {
			log.Errorw("Failed to publish", "channel", send.channel, "err", err)
		}
	}
}
