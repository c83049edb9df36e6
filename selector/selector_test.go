package selector_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/election"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
	"github.com/votegrid/votegrid/tally"
)

var (
	partyA = model.NewParty("A")
	partyB = model.NewParty("B")
)

func fourVoters(t *testing.T) *model.Population {
	t.Helper()
	b := &model.PopulationBuilder{}
	b.AddVoter(model.Voter{Position: model.Point{X: 0.1, Y: 0.1}, Party: partyA})
	b.AddVoter(model.Voter{Position: model.Point{X: 0.6, Y: 0.1}, Party: partyB})
	b.AddVoter(model.Voter{Position: model.Point{X: 0.1, Y: 0.6}, Party: partyA})
	b.AddVoter(model.Voter{Position: model.Point{X: 0.6, Y: 0.6}, Party: partyB})
	population, err := b.Build()
	require.NoError(t, err)
	return population
}

func mustGrid(t *testing.T, ids [][]int) *grid.Grid {
	t.Helper()
	g, err := grid.FromArray(ids, 1, 1)
	require.NoError(t, err)
	return g
}

func TestGridBuilder(t *testing.T) {
	t.Run("requires population", func(t *testing.T) {
		_, err := selector.NewGridBuilder().AddGrid(mustGrid(t, [][]int{{1}})).Build()
		require.ErrorIs(t, err, selector.ErrNoPopulation)
	})
	t.Run("requires a grid", func(t *testing.T) {
		_, err := selector.NewGridBuilder().SetPopulation(fourVoters(t)).Build()
		require.ErrorIs(t, err, selector.ErrNoConfigurations)
	})
	t.Run("rejects voter outside grid", func(t *testing.T) {
		small, err := grid.FromArray([][]int{{1}}, 0.5, 0.5)
		require.NoError(t, err)
		_, err = selector.NewGridBuilder().SetPopulation(fourVoters(t)).AddGrid(small).Build()
		require.ErrorIs(t, err, selector.ErrVoterOutsideGrid)
	})
	t.Run("is single use", func(t *testing.T) {
		b := selector.NewGridBuilder().SetPopulation(fourVoters(t)).AddGrid(mustGrid(t, [][]int{{1}}))
		_, err := b.Build()
		require.NoError(t, err)
		require.ErrorIs(t, b.AddGrid(mustGrid(t, [][]int{{2}})).Err(), model.ErrBuilderSpent)
		_, err = b.Build()
		require.ErrorIs(t, err, model.ErrBuilderSpent)
	})
}

func TestGridSelector(t *testing.T) {
	subject, err := selector.NewGridBuilder().
		SetPopulation(fourVoters(t)).
		AddGrid(mustGrid(t, [][]int{{1, 1}, {2, 2}})).
		AddGrid(mustGrid(t, [][]int{{1, 2}, {1, 2}})).
		Build()
	require.NoError(t, err)
	require.Equal(t, -1, subject.Index())
	require.Nil(t, subject.Active())
	require.Equal(t, []string{selector.ChannelVoters, selector.ChannelGridCells}, subject.EventKeys())

	var order []string
	var voters []selector.VoterState
	var cells []selector.CellState
	id := producer.NewID("test")
	require.NoError(t, subject.Subscribe(selector.ChannelVoters, id, func(e selector.Event) {
		order = append(order, selector.ChannelVoters)
		voters = voters[:0]
		for v := range e.(*selector.VotersEvent).All() {
			voters = append(voters, v)
		}
	}))
	require.NoError(t, subject.Subscribe(selector.ChannelGridCells, id, func(e selector.Event) {
		order = append(order, selector.ChannelGridCells)
		ce := e.(*selector.CellsEvent)
		require.Equal(t, 2, ce.Rows())
		require.Equal(t, 2, ce.Columns())
		cells = cells[:0]
		for c := range ce.All() {
			cells = append(cells, c)
		}
	}))

	subject.Update()
	require.Equal(t, 0, subject.Index())
	require.Equal(t, []string{selector.ChannelVoters, selector.ChannelGridCells}, order)
	require.Len(t, voters, 4)
	require.Len(t, cells, 4)
	wantDistricts := []model.District{1, 1, 2, 2}
	for i, v := range voters {
		require.Equal(t, wantDistricts[i], v.Cell.District, "voter %d", i)
	}

	subject.Update()
	require.Equal(t, 1, subject.Index())
	wantDistricts = []model.District{1, 2, 1, 2}
	for i, v := range voters {
		require.Equal(t, wantDistricts[i], v.Cell.District, "voter %d", i)
	}

	subject.Update()
	require.Equal(t, 0, subject.Index(), "index wraps around")

	require.NoError(t, subject.Unsubscribe(selector.ChannelVoters, id))
	order = nil
	subject.Update()
	require.Equal(t, []string{selector.ChannelGridCells}, order)
}

func TestMapSelector(t *testing.T) {
	share := func(a, b int64) *tally.VoteShare {
		vs, err := tally.NewVoteShareBuilder().SetPartyVotes(partyA, a).SetPartyVotes(partyB, b).Build()
		require.NoError(t, err)
		return vs
	}
	district, err := election.NewDistrictBuilder().SetDistrict(3).SetVotes(share(5, 2)).SetWinner(partyA).Build()
	require.NoError(t, err)
	p1, err := election.NewPrecinctBuilder().SetID("p1").SetCounty("Linn").SetVotes(share(5, 2)).Build()
	require.NoError(t, err)
	p2, err := election.NewPrecinctBuilder().SetID("p2").SetCounty("Linn").SetVotes(share(0, 1)).Build()
	require.NoError(t, err)
	state, err := election.NewStateBuilder().
		SetStatewide(share(5, 3)).
		AddDistrict(district).
		AddPrecinct(p1).
		AddPrecinct(p2).
		AssignPrecincts(3, 0).
		Build()
	require.NoError(t, err)

	t.Run("requires a state", func(t *testing.T) {
		_, err := selector.NewMapBuilder().Build()
		require.ErrorIs(t, err, selector.ErrNoConfigurations)
	})

	subject, err := selector.NewMapBuilder().AddState(state).Build()
	require.NoError(t, err)

	var order []string
	var precincts []selector.PrecinctState
	var statewide *tally.VoteShare
	id := producer.NewID("test")
	require.NoError(t, subject.Subscribe(selector.ChannelDistricts, id, func(e selector.Event) {
		order = append(order, selector.ChannelDistricts)
		require.Equal(t, 1, e.(*selector.DistrictsEvent).Len())
	}))
	require.NoError(t, subject.Subscribe(selector.ChannelPrecincts, id, func(e selector.Event) {
		order = append(order, selector.ChannelPrecincts)
		for p := range e.(*selector.PrecinctsEvent).All() {
			precincts = append(precincts, p)
		}
	}))
	require.NoError(t, subject.Subscribe(selector.ChannelStatewide, id, func(e selector.Event) {
		order = append(order, selector.ChannelStatewide)
		statewide = e.(*selector.StatewideEvent).Votes
	}))

	subject.Update()
	require.Equal(t, 0, subject.Index())
	require.Same(t, state, subject.Active())
	require.Equal(t, []string{selector.ChannelDistricts, selector.ChannelPrecincts, selector.ChannelStatewide}, order)
	require.Len(t, precincts, 2)
	require.True(t, precincts[0].Assigned)
	require.Equal(t, model.District(3), precincts[0].District)
	require.False(t, precincts[1].Assigned)
	require.EqualValues(t, 8, statewide.Total())
}
