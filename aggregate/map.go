package aggregate

import (
	"context"

	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
	"github.com/votegrid/votegrid/tally"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// MapResultAggregator combines the pre-tabulated district and statewide
// records published by a map selector into a ResultEvent. A result is emitted
// whenever either record changes.
type MapResultAggregator struct {
	resultPublisher

	source    EventSource
	id        producer.ID
	districts []selector.DistrictState
	statewide *tally.VoteShare
}

// NewMapResultAggregator subscribes a new aggregator to the districts and
// statewide channels of source.
func NewMapResultAggregator(source EventSource) (*MapResultAggregator, error) {
	if source == nil {
		return nil, xerrors.New("nil event source")
	}
	a := &MapResultAggregator{
		source: source,
		id:     producer.NewID("map-result-aggregator"),
	}
	if err := source.Subscribe(selector.ChannelDistricts, a.id, a.onDistricts); err != nil {
		return nil, xerrors.Errorf("subscribing to districts: %w", err)
	}
	if err := source.Subscribe(selector.ChannelStatewide, a.id, a.onStatewide); err != nil {
		_ = source.Unsubscribe(selector.ChannelDistricts, a.id)
		return nil, xerrors.Errorf("subscribing to statewide: %w", err)
	}
	return a, nil
}

// Close unsubscribes the aggregator from its source.
func (a *MapResultAggregator) Close() error {
	if err := a.source.Unsubscribe(selector.ChannelDistricts, a.id); err != nil {
		return err
	}
	return a.source.Unsubscribe(selector.ChannelStatewide, a.id)
}

func (a *MapResultAggregator) onDistricts(e selector.Event) {
	districts, ok := e.(*selector.DistrictsEvent)
	if !ok {
		log.Errorw("Unexpected event on districts channel", "event", e)
		return
	}
	a.districts = a.districts[:0]
	for d := range districts.All() {
		a.districts = append(a.districts, d)
	}
	a.emit()
}

func (a *MapResultAggregator) onStatewide(e selector.Event) {
	statewide, ok := e.(*selector.StatewideEvent)
	if !ok {
		log.Errorw("Unexpected event on statewide channel", "event", e)
		return
	}
	a.statewide = statewide.Votes
	a.emit()
}

// emit publishes the combination of the latest district and statewide
// records. Parties are those of the statewide vote followed by any district
// winner absent from it.
func (a *MapResultAggregator) emit() {
	b := newResultBuilder()
	if a.statewide != nil {
		for _, party := range a.statewide.Parties() {
			percent := a.statewide.Percent(party)
			b.party(party, func(pr *PartyResult) { pr.VotePercent = percent })
		}
	}
	for _, ds := range a.districts {
		d := ds.District
		b.district(d.District, d.Votes, d.Winner)
		b.party(d.Winner, func(pr *PartyResult) { pr.Seats++ })
	}
	result := b.build()

	ctx := context.Background()
	attrs := metric.WithAttributes(attrKindMap)
	metrics.results.Add(ctx, 1, attrs)
	metrics.districts.Record(ctx, int64(result.NumDistricts()), attrs)
	log.Debugw("Combined map results", "districts", result.NumDistricts(), "parties", len(result.parties))

	a.publish(result)
}
