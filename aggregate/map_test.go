package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/aggregate"
	"github.com/votegrid/votegrid/election"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
	"github.com/votegrid/votegrid/tally"
)

func share(t *testing.T, votes map[model.Party]int64, order ...model.Party) *tally.VoteShare {
	t.Helper()
	b := tally.NewVoteShareBuilder()
	for _, p := range order {
		b.SetPartyVotes(p, votes[p])
	}
	vs, err := b.Build()
	require.NoError(t, err)
	return vs
}

func state(t *testing.T, statewide *tally.VoteShare, districts ...*election.District) *election.State {
	t.Helper()
	b := election.NewStateBuilder().SetStatewide(statewide)
	for _, d := range districts {
		b.AddDistrict(d)
	}
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func districtResult(t *testing.T, id model.District, winner model.Party, votes *tally.VoteShare) *election.District {
	t.Helper()
	d, err := election.NewDistrictBuilder().SetDistrict(id).SetVotes(votes).SetWinner(winner).Build()
	require.NoError(t, err)
	return d
}

func TestMapResultAggregator(t *testing.T) {
	first := state(t,
		share(t, map[model.Party]int64{partyA: 60, partyB: 40}, partyA, partyB),
		districtResult(t, 1, partyA, share(t, map[model.Party]int64{partyA: 35, partyB: 15}, partyA, partyB)),
		districtResult(t, 2, partyB, share(t, map[model.Party]int64{partyA: 25, partyB: 25}, partyA, partyB)),
		districtResult(t, 3, partyC, share(t, map[model.Party]int64{partyC: 1}, partyC)),
	)
	second := state(t,
		share(t, map[model.Party]int64{partyB: 3}, partyB),
		districtResult(t, 9, partyB, share(t, map[model.Party]int64{partyB: 3}, partyB)),
	)
	source, err := selector.NewMapBuilder().AddState(first).AddState(second).Build()
	require.NoError(t, err)
	subject, err := aggregate.NewMapResultAggregator(source)
	require.NoError(t, err)

	var got []*aggregate.ResultEvent
	subject.Subscribe(producer.NewID("test"), func(r *aggregate.ResultEvent) { got = append(got, r) })

	source.Update()
	require.Len(t, got, 2, "one result per districts and statewide event")
	result := subject.Latest()
	require.Same(t, got[1], result)
	require.Equal(t, []model.District{1, 2, 3}, result.Districts())
	require.Equal(t, []model.Party{partyA, partyB, partyC}, result.Parties())
	require.Equal(t, 0.6, result.PartyPercent(partyA))
	require.Equal(t, 0.4, result.PartyPercent(partyB))
	require.Zero(t, result.PartyPercent(partyC))
	require.Equal(t, 1, result.Seats(partyA))
	require.Equal(t, 1, result.Seats(partyB))
	require.Equal(t, 1, result.Seats(partyC))
	require.Equal(t, 3, result.TotalSeats())
	winner, found := result.Winner(2)
	require.True(t, found)
	require.Equal(t, partyB, winner, "the recorded winner is kept")
	require.EqualValues(t, 25, result.DistrictVotersByParty(2, partyA))

	source.Update()
	require.Len(t, got, 4)
	intermediate := got[2]
	require.Equal(t, []model.District{9}, intermediate.Districts())
	require.Equal(t, 0.6, intermediate.PartyPercent(partyA), "statewide lags until its own event")

	result = subject.Latest()
	require.Equal(t, []model.Party{partyB}, result.Parties())
	require.Equal(t, 1.0, result.PartyPercent(partyB))
	require.Equal(t, 1, result.Seats(partyB))
	_, found = result.Party(partyA)
	require.False(t, found)

	require.NoError(t, subject.Close())
	source.Update()
	require.Len(t, got, 4)
}
