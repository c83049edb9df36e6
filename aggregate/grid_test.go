package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/aggregate"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
)

var (
	partyA = model.NewParty("A")
	partyB = model.NewParty("B")
	partyC = model.NewParty("C")
)

func population(t *testing.T, voters ...model.Voter) *model.Population {
	t.Helper()
	b := &model.PopulationBuilder{}
	for _, v := range voters {
		b.AddVoter(v)
	}
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func voter(x, y float64, party model.Party) model.Voter {
	return model.Voter{Position: model.Point{X: x, Y: y}, Party: party}
}

func gridSelector(t *testing.T, p *model.Population, configs ...[][]int) *selector.GridSelector {
	t.Helper()
	b := selector.NewGridBuilder().SetPopulation(p)
	for _, ids := range configs {
		g, err := grid.FromArray(ids, 1, 1)
		require.NoError(t, err)
		b.AddGrid(g)
	}
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestGridResultAggregator(t *testing.T) {
	t.Run("tabulates two by two grid", func(t *testing.T) {
		source := gridSelector(t, population(t,
			voter(0.1, 0.1, partyA),
			voter(0.6, 0.1, partyB),
			voter(0.1, 0.6, partyA),
			voter(0.6, 0.6, partyB),
		), [][]int{{1, 1}, {2, 2}})
		subject, err := aggregate.NewGridResultAggregator(source)
		require.NoError(t, err)
		require.Nil(t, subject.Latest())

		var got []*aggregate.ResultEvent
		subject.Subscribe(producer.NewID("test"), func(r *aggregate.ResultEvent) { got = append(got, r) })
		source.Update()
		require.Len(t, got, 1)
		result := got[0]
		require.Same(t, result, subject.Latest())

		require.Equal(t, []model.District{1, 2}, result.Districts())
		require.Equal(t, []model.Party{partyA, partyB}, result.Parties())
		for _, d := range result.Districts() {
			require.EqualValues(t, 1, result.DistrictVotersByParty(d, partyA))
			require.EqualValues(t, 1, result.DistrictVotersByParty(d, partyB))
			winner, found := result.Winner(d)
			require.True(t, found)
			require.Equal(t, partyA, winner, "ties go to the first party seen")
		}
		require.Equal(t, 0.5, result.PartyPercent(partyA))
		require.Equal(t, 0.5, result.PartyPercent(partyB))
		require.Equal(t, 2, result.Seats(partyA))
		require.Equal(t, 0, result.Seats(partyB))
		require.Equal(t, result.NumDistricts(), result.TotalSeats())
	})

	t.Run("conserves seats", func(t *testing.T) {
		var voters []model.Voter
		parties := []model.Party{partyA, partyB, partyC, partyB, partyA, partyA, partyC}
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				voters = append(voters, voter((float64(j)+0.5)/6, (float64(i)+0.5)/6, parties[(i*6+j)%len(parties)]))
			}
		}
		source := gridSelector(t, population(t, voters...),
			[][]int{{1, 1, 1, 2, 2, 2}, {1, 1, 1, 2, 2, 2}, {3, 3, 3, 4, 4, 4}, {3, 3, 3, 4, 4, 4}, {5, 5, 5, 6, 6, 6}, {5, 5, 5, 6, 6, 6}},
			[][]int{{1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}},
			[][]int{{7, 7, 7, 7, 7, 7}, {7, 7, 7, 7, 7, 7}, {7, 7, 7, 7, 7, 7}, {8, 8, 8, 8, 8, 8}, {8, 8, 8, 8, 8, 8}, {8, 8, 8, 8, 8, 8}},
		)
		subject, err := aggregate.NewGridResultAggregator(source)
		require.NoError(t, err)
		for range 2 * source.Len() {
			source.Update()
			result := subject.Latest()
			require.NotNil(t, result)
			require.Equal(t, result.NumDistricts(), result.TotalSeats())
			var percent float64
			for _, p := range result.Parties() {
				percent += result.PartyPercent(p)
			}
			require.InDelta(t, 1.0, percent, 1e-9)
		}
	})

	t.Run("empty population yields empty result", func(t *testing.T) {
		source := gridSelector(t, population(t), [][]int{{1}})
		subject, err := aggregate.NewGridResultAggregator(source)
		require.NoError(t, err)
		source.Update()
		result := subject.Latest()
		require.NotNil(t, result)
		require.Empty(t, result.Parties())
		require.Zero(t, result.NumDistricts())
		require.Zero(t, result.TotalSeats())
	})

	t.Run("broadcasts to channel subscribers", func(t *testing.T) {
		source := gridSelector(t, population(t, voter(0.5, 0.5, partyC)), [][]int{{4}})
		subject, err := aggregate.NewGridResultAggregator(source)
		require.NoError(t, err)
		ch := make(chan *aggregate.ResultEvent, 1)
		last, closer := subject.SubscribeForResults(ch)
		defer closer()
		require.Nil(t, last)

		source.Update()
		select {
		case r := <-ch:
			require.Equal(t, 1, r.Seats(partyC))
		case <-time.After(5 * time.Second):
			require.FailNow(t, "timed out waiting for result")
		}
	})

	t.Run("stops after close", func(t *testing.T) {
		source := gridSelector(t, population(t, voter(0.5, 0.5, partyC)), [][]int{{4}})
		subject, err := aggregate.NewGridResultAggregator(source)
		require.NoError(t, err)
		require.NoError(t, subject.Close())
		source.Update()
		require.Nil(t, subject.Latest())
	})

	t.Run("requires source", func(t *testing.T) {
		_, err := aggregate.NewGridResultAggregator(nil)
		require.Error(t, err)
	})
}
