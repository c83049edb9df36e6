package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/model"
)

func TestPopulationBuilder(t *testing.T) {
	blue := model.NewParty("Blue")
	voters := []model.Voter{
		{Position: model.Point{X: 0.1, Y: 0.2}, Party: blue},
		{Position: model.Point{X: 0.3, Y: 0.4}, Party: model.NewParty("Red")},
	}

	t.Run("iterates in order and is restartable", func(t *testing.T) {
		subject := &model.PopulationBuilder{}
		for _, v := range voters {
			subject.AddVoter(v)
		}
		population, err := subject.Build()
		require.NoError(t, err)
		require.Equal(t, 2, population.Len())
		for pass := 0; pass < 2; pass++ {
			var got []model.Voter
			for v := range population.All() {
				got = append(got, v)
			}
			require.Equal(t, voters, got)
		}
	})
	t.Run("voter without party is error", func(t *testing.T) {
		subject := (&model.PopulationBuilder{}).AddVoter(model.Voter{})
		require.ErrorContains(t, subject.Err(), "no party")
		_, err := subject.Build()
		require.Error(t, err)
	})
	t.Run("single use", func(t *testing.T) {
		subject := (&model.PopulationBuilder{}).AddVoter(voters[0])
		_, err := subject.Build()
		require.NoError(t, err)
		subject.AddVoter(voters[1])
		require.ErrorIs(t, subject.Err(), model.ErrBuilderSpent)
		_, err = subject.Build()
		require.ErrorIs(t, err, model.ErrBuilderSpent)
	})
	t.Run("empty population is allowed", func(t *testing.T) {
		population, err := (&model.PopulationBuilder{}).Build()
		require.NoError(t, err)
		require.Zero(t, population.Len())
	})
}

func TestParty(t *testing.T) {
	require.True(t, model.Party{}.IsZero())
	require.False(t, model.NewParty("Blue").IsZero())
	require.Equal(t, "Blue", model.NewParty("Blue").String())
	require.Equal(t, "DEM", model.Party{ID: "DEM"}.String())
	require.Equal(t, "District 7", model.District(7).String())
}
