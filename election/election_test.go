package election_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/election"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/tally"
)

var (
	red  = model.Party{ID: "red", Name: "Red"}
	blue = model.Party{ID: "blue", Name: "Blue"}
)

func votes(t *testing.T, r, b int64) *tally.VoteShare {
	t.Helper()
	vs, err := tally.NewVoteShareBuilder().SetPartyVotes(red, r).SetPartyVotes(blue, b).Build()
	require.NoError(t, err)
	return vs
}

func precinct(t *testing.T, id string, r, b int64) *election.Precinct {
	t.Helper()
	p, err := election.NewPrecinctBuilder().SetID(id).SetCounty("Story").SetVotes(votes(t, r, b)).Build()
	require.NoError(t, err)
	return p
}

func district(t *testing.T, d model.District, r, b int64) *election.District {
	t.Helper()
	winner := red
	if b > r {
		winner = blue
	}
	result, err := election.NewDistrictBuilder().SetDistrict(d).SetVotes(votes(t, r, b)).SetWinner(winner).Build()
	require.NoError(t, err)
	return result
}

func TestPrecinctBuilder(t *testing.T) {
	t.Run("requires fields", func(t *testing.T) {
		_, err := election.NewPrecinctBuilder().SetID("p1").Build()
		require.ErrorIs(t, err, election.ErrMissingField)
	})
	t.Run("builds once", func(t *testing.T) {
		b := election.NewPrecinctBuilder().SetID("p1").SetCounty("Polk").SetVotes(votes(t, 3, 4))
		p, err := b.Build()
		require.NoError(t, err)
		require.Equal(t, "p1", p.ID)
		require.Equal(t, "Polk", p.County)
		require.EqualValues(t, 7, p.Votes.Total())
		_, err = b.Build()
		require.ErrorIs(t, err, model.ErrBuilderSpent)
	})
}

func TestDistrictBuilder(t *testing.T) {
	t.Run("zero district is valid", func(t *testing.T) {
		d := district(t, 0, 1, 2)
		require.Equal(t, model.District(0), d.District)
		require.Equal(t, blue, d.Winner)
	})
	t.Run("requires winner", func(t *testing.T) {
		_, err := election.NewDistrictBuilder().SetDistrict(1).SetVotes(votes(t, 1, 1)).Build()
		require.ErrorIs(t, err, election.ErrMissingField)
	})
}

func TestStateBuilder(t *testing.T) {
	newBuilder := func(t *testing.T) *election.StateBuilder {
		return election.NewStateBuilder().
			SetStatewide(votes(t, 10, 8)).
			AddDistrict(district(t, 1, 6, 2)).
			AddDistrict(district(t, 2, 4, 6)).
			AddPrecinct(precinct(t, "a", 3, 1)).
			AddPrecinct(precinct(t, "b", 3, 1)).
			AddPrecinct(precinct(t, "c", 4, 6))
	}

	t.Run("assigns precincts", func(t *testing.T) {
		state, err := newBuilder(t).AssignPrecincts(1, 0, 1).AssignPrecincts(2, 2).Build()
		require.NoError(t, err)
		require.Len(t, state.Districts(), 2)
		require.Len(t, state.Precincts(), 3)
		require.EqualValues(t, 18, state.Statewide().Total())

		of1, err := state.PrecinctsOf(1)
		require.NoError(t, err)
		require.Len(t, of1, 2)
		require.Equal(t, "a", of1[0].ID)
		require.Equal(t, "b", of1[1].ID)

		d, found, err := state.DistrictOf(2)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, model.District(2), d)
	})
	t.Run("unassigned precinct", func(t *testing.T) {
		state, err := newBuilder(t).AssignPrecincts(1, 0).Build()
		require.NoError(t, err)
		_, found, err := state.DistrictOf(2)
		require.NoError(t, err)
		require.False(t, found)
		of2, err := state.PrecinctsOf(2)
		require.NoError(t, err)
		require.Empty(t, of2)
	})
	t.Run("replaces repeated district", func(t *testing.T) {
		state, err := newBuilder(t).AddDistrict(district(t, 1, 0, 9)).Build()
		require.NoError(t, err)
		districts := state.Districts()
		require.Len(t, districts, 2)
		require.Equal(t, model.District(1), districts[0].District)
		require.Equal(t, blue, districts[0].Winner)
	})
	t.Run("rejects overlap", func(t *testing.T) {
		_, err := newBuilder(t).AssignPrecincts(1, 0, 1).AssignPrecincts(2, 1).Build()
		require.ErrorIs(t, err, election.ErrOverlappingDistricts)
	})
	t.Run("rejects out of range index", func(t *testing.T) {
		_, err := newBuilder(t).AssignPrecincts(1, 3).Build()
		require.Error(t, err)
	})
	t.Run("rejects unknown district", func(t *testing.T) {
		_, err := newBuilder(t).AssignPrecincts(7, 0).Build()
		require.Error(t, err)
	})
	t.Run("requires statewide", func(t *testing.T) {
		_, err := election.NewStateBuilder().Build()
		require.ErrorIs(t, err, election.ErrMissingField)
	})
}
