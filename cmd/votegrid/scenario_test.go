package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/votegrid/votegrid/catalog"
	"github.com/votegrid/votegrid/model"
)

func TestLoadScenarioFile(t *testing.T) {
	sf, err := loadScenarioFile("testdata/scenario.json")
	require.NoError(t, err)
	require.Len(t, sf.Plans, 2)
	require.Len(t, sf.Scenarios, 2)
	require.Equal(t, "halves", sf.plans()[0].Name)
	require.Equal(t, [][]int{{1, 1}, {2, 2}}, sf.plans()[0].Districts)

	_, err = loadScenarioFile("testdata/missing.json")
	require.Error(t, err)
}

func TestBuildSimulations(t *testing.T) {
	ctx := context.Background()
	sf, err := loadScenarioFile("testdata/scenario.json")
	require.NoError(t, err)

	sims, err := buildSimulations(ctx, sf)
	require.NoError(t, err)
	require.Len(t, sims, 2)
	t.Cleanup(func() {
		for _, s := range sims {
			require.NoError(t, s.Close())
		}
	})

	require.Equal(t, "noise", sims[0].Name())
	require.Equal(t, 2, sims[0].Selector().Len())
	require.Equal(t, 200, sims[0].Population().Len())

	require.Equal(t, "radial", sims[1].Name())
	require.Equal(t, 1, sims[1].Selector().Len())
	require.Equal(t, 100, sims[1].Population().Len())

	result := sims[0].Step()
	require.Equal(t, 2, result.NumDistricts())
	require.Equal(t, 2, result.TotalSeats())
	for _, party := range result.Parties() {
		require.Contains(t, []model.Party{model.NewParty("DEM"), model.NewParty("REP")}, party)
	}
}

func TestScenarioOptions(t *testing.T) {
	noPlans := func(name string) (*catalog.Plan, error) { return nil, catalog.ErrPlanNotFound }

	t.Run("unknown plan", func(t *testing.T) {
		s := scenarioSpec{Name: "s", Plans: []string{"nope"}}
		_, err := s.options(noPlans)
		require.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})
	t.Run("wrong party count", func(t *testing.T) {
		s := scenarioSpec{Name: "s", Parties: []string{"A"}}
		_, err := s.options(noPlans)
		require.ErrorContains(t, err, "exactly two parties")
	})
	t.Run("unknown field", func(t *testing.T) {
		s := scenarioSpec{Name: "s", Field: &fieldSpec{Kind: "fractal"}}
		_, err := s.options(noPlans)
		require.ErrorContains(t, err, "unknown field kind")
	})
	t.Run("defaults", func(t *testing.T) {
		s := scenarioSpec{Name: "s"}
		opts, err := s.options(noPlans)
		require.NoError(t, err)
		require.Len(t, opts, 2)
	})
}

func TestBuildSimulationsRequiresScenarios(t *testing.T) {
	_, err := buildSimulations(context.Background(), &scenarioFile{})
	require.Error(t, err)
}
