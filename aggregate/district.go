package aggregate

import (
	"context"
	"errors"
	"sync"

	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/tally"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// ErrMissingSource signals that a DistrictAggregatorBuilder was built before
// both of its sources were set.
var ErrMissingSource = errors.New("source not set")

// DistrictFocusEvent is the vote count of a single, focused district.
type DistrictFocusEvent struct {
	District model.District
	Votes    *tally.VoteShare
}

// DistrictAggregator follows the district under the pointer and publishes its
// votes from the latest result. Nothing is published until a district has
// been focused and a result has arrived. From then on every change of focused
// district and every new result publishes exactly one event.
type DistrictAggregator struct {
	producer.Producer[DistrictFocusEvent]

	hovers  HoverSource
	results ResultSource
	id      producer.ID

	mu       sync.Mutex
	district model.District
	focused  bool
	votes    map[model.District]*tally.VoteShare
	received bool
}

// DistrictAggregatorBuilder constructs a DistrictAggregator. It may be built
// exactly once.
type DistrictAggregatorBuilder struct {
	hovers  HoverSource
	results ResultSource
	err     error
	spent   bool
}

// NewDistrictAggregatorBuilder returns an empty builder.
func NewDistrictAggregatorBuilder() *DistrictAggregatorBuilder {
	return &DistrictAggregatorBuilder{}
}

func (b *DistrictAggregatorBuilder) usable() bool {
	if b.spent {
		b.err = model.ErrBuilderSpent
		return false
	}
	return b.err == nil
}

// SetDistrictSource sets the source of hover events deciding which district
// is focused.
func (b *DistrictAggregatorBuilder) SetDistrictSource(s HoverSource) *DistrictAggregatorBuilder {
	switch {
	case !b.usable():
	case s == nil:
		b.err = xerrors.Errorf("nil district source: %w", ErrMissingSource)
	default:
		b.hovers = s
	}
	return b
}

// SetResultSource sets the source of result events.
func (b *DistrictAggregatorBuilder) SetResultSource(s ResultSource) *DistrictAggregatorBuilder {
	switch {
	case !b.usable():
	case s == nil:
		b.err = xerrors.Errorf("nil result source: %w", ErrMissingSource)
	default:
		b.results = s
	}
	return b
}

// Err reports the first error recorded by the builder, if any.
func (b *DistrictAggregatorBuilder) Err() error { return b.err }

// Build returns the aggregator, subscribed to both sources.
func (b *DistrictAggregatorBuilder) Build() (*DistrictAggregator, error) {
	if b.spent {
		return nil, model.ErrBuilderSpent
	}
	b.spent = true
	switch {
	case b.err != nil:
		return nil, b.err
	case b.hovers == nil:
		return nil, xerrors.Errorf("district source: %w", ErrMissingSource)
	case b.results == nil:
		return nil, xerrors.Errorf("result source: %w", ErrMissingSource)
	}

	a := &DistrictAggregator{
		hovers:  b.hovers,
		results: b.results,
		id:      producer.NewID("district-aggregator"),
	}
	for _, channel := range hoverChannels {
		if err := a.hovers.Subscribe(channel, a.id, a.onHover(channel)); err != nil {
			a.unsubscribeHovers()
			return nil, xerrors.Errorf("subscribing to %s: %w", channel, err)
		}
	}
	a.results.Subscribe(a.id, a.onResult)
	return a, nil
}

var hoverChannels = []string{ChannelMouseMove, ChannelMouseOver, ChannelMouseOut}

// Close unsubscribes the aggregator from both sources.
func (a *DistrictAggregator) Close() error {
	a.results.Unsubscribe(a.id)
	return a.unsubscribeHovers()
}

func (a *DistrictAggregator) unsubscribeHovers() error {
	var errs []error
	for _, channel := range hoverChannels {
		if err := a.hovers.Unsubscribe(channel, a.id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Focused returns the focused district, if any.
func (a *DistrictAggregator) Focused() (model.District, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.district, a.focused
}

func (a *DistrictAggregator) onHover(channel string) func(HoverEvent) {
	attrs := metric.WithAttributes(attrHoverEvent.String(channel))
	return func(e HoverEvent) {
		metrics.hovers.Add(context.Background(), 1, attrs)
		a.mu.Lock()
		if a.focused && a.district == e.District {
			a.mu.Unlock()
			return
		}
		a.district, a.focused = e.District, true
		event, ready := a.eventLocked()
		a.mu.Unlock()
		if ready {
			a.emit(event)
		}
	}
}

func (a *DistrictAggregator) onResult(r *ResultEvent) {
	parties := r.Parties()
	votes := make(map[model.District]*tally.VoteShare, r.NumDistricts())
	for _, d := range r.Districts() {
		share, _ := r.DistrictVotes(d)
		votes[d] = withEveryParty(share, parties)
	}
	a.mu.Lock()
	a.votes, a.received = votes, true
	event, ready := a.eventLocked()
	a.mu.Unlock()
	if ready {
		a.emit(event)
	}
}

// withEveryParty returns share with a zero entry for each of parties it lacks.
// Parties of the result come first, in result order.
func withEveryParty(share *tally.VoteShare, parties []model.Party) *tally.VoteShare {
	filled := tally.NewPartToWhole[model.Party]()
	for _, party := range parties {
		_, _, _ = filled.SetPart(party, share.Votes(party))
	}
	for _, party := range share.Parties() {
		if !filled.HasPart(party) {
			_, _, _ = filled.SetPart(party, share.Votes(party))
		}
	}
	return tally.NewVoteShare(filled)
}

func (a *DistrictAggregator) eventLocked() (DistrictFocusEvent, bool) {
	if !a.focused || !a.received {
		return DistrictFocusEvent{}, false
	}
	votes, found := a.votes[a.district]
	if !found {
		votes = tally.NewVoteShare(nil)
	}
	return DistrictFocusEvent{District: a.district, Votes: votes}, true
}

func (a *DistrictAggregator) emit(e DistrictFocusEvent) {
	metrics.results.Add(context.Background(), 1, metric.WithAttributes(attrKindFocus))
	log.Debugw("Focused district", "district", e.District, "votes", e.Votes.Total())
	a.Send(e)
}
