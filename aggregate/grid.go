package aggregate

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
	"github.com/votegrid/votegrid/tally"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

var log = logging.Logger("votegrid/aggregate")

// GridResultAggregator tabulates the voter assignments published by a grid
// selector into a ResultEvent for each update.
type GridResultAggregator struct {
	resultPublisher

	source EventSource
	id     producer.ID
}

// NewGridResultAggregator subscribes a new aggregator to the voters channel of
// source.
func NewGridResultAggregator(source EventSource) (*GridResultAggregator, error) {
	if source == nil {
		return nil, xerrors.New("nil event source")
	}
	a := &GridResultAggregator{
		source: source,
		id:     producer.NewID("grid-result-aggregator"),
	}
	if err := source.Subscribe(selector.ChannelVoters, a.id, a.onVoters); err != nil {
		return nil, xerrors.Errorf("subscribing to voters: %w", err)
	}
	return a, nil
}

// Close unsubscribes the aggregator from its source.
func (a *GridResultAggregator) Close() error {
	return a.source.Unsubscribe(selector.ChannelVoters, a.id)
}

func (a *GridResultAggregator) onVoters(e selector.Event) {
	voters, ok := e.(*selector.VotersEvent)
	if !ok {
		log.Errorw("Unexpected event on voters channel", "event", e)
		return
	}
	result := TabulateVoters(voters)

	ctx := context.Background()
	attrs := metric.WithAttributes(attrKindGrid)
	metrics.results.Add(ctx, 1, attrs)
	metrics.votesTabulated.Add(ctx, int64(voters.Len()))
	metrics.districts.Record(ctx, int64(result.NumDistricts()), attrs)
	log.Debugw("Tabulated voters", "voters", voters.Len(), "districts", result.NumDistricts(), "parties", len(result.parties))

	a.publish(result)
}

// TabulateVoters counts the votes in each district and overall. Each district
// is won by the party with the strictly greatest count in it; among parties
// with equal counts the one encountered first wins. An event with no voters
// yields an empty result.
func TabulateVoters(e *selector.VotersEvent) *ResultEvent {
	overall := tally.NewPartToWhole[model.Party]()
	perDistrict := make(map[model.District]*tally.PartToWhole[model.Party])
	var order []model.District
	for vs := range e.All() {
		party, district := vs.Voter.Party, vs.Cell.District
		if _, err := overall.Add(party, 1); err != nil {
			log.Errorw("Skipping voter", "position", vs.Voter.Position, "err", err)
			continue
		}
		counts, found := perDistrict[district]
		if !found {
			counts = tally.NewPartToWhole[model.Party]()
			perDistrict[district] = counts
			order = append(order, district)
		}
		// The party was accepted by overall, so it is a valid key here too.
		_, _ = counts.Add(party, 1)
	}

	b := newResultBuilder()
	for _, party := range overall.PartKeys() {
		if overall.Part(party) == 0 {
			continue
		}
		percent := overall.Percent(party)
		b.party(party, func(pr *PartyResult) { pr.VotePercent = percent })
	}
	for _, district := range order {
		counts := perDistrict[district]
		winner, _, _ := counts.Leader()
		b.district(district, tally.NewVoteShare(counts), winner)
		b.party(winner, func(pr *PartyResult) { pr.Seats++ })
	}
	return b.build()
}
