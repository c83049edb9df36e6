package main

import (
	"encoding/json"
	"os"

	"github.com/votegrid/votegrid/catalog"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/sim"
	"golang.org/x/xerrors"
)

const defaultNoiseScale = 3

// scenarioFile is the JSON document read by the CLI: a set of named plans and
// the simulations to run over them.
type scenarioFile struct {
	Plans     []planSpec     `json:"plans"`
	Scenarios []scenarioSpec `json:"scenarios"`
}

type planSpec struct {
	Name      string  `json:"name"`
	Districts [][]int `json:"districts"`
}

type fieldSpec struct {
	// Kind is either "noise" or "radial".
	Kind   string  `json:"kind"`
	Seed   uint64  `json:"seed,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Radius float64 `json:"radius,omitempty"`
}

type scenarioSpec struct {
	Name    string     `json:"name"`
	Seed    uint64     `json:"seed,omitempty"`
	Voters  int        `json:"voters,omitempty"`
	Width   float64    `json:"width,omitempty"`
	Height  float64    `json:"height,omitempty"`
	Parties []string   `json:"parties,omitempty"`
	Field   *fieldSpec `json:"field,omitempty"`
	// Plans names entries of the plans section, cycled through in order.
	Plans []string `json:"plans"`
}

func loadScenarioFile(path string) (*scenarioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()
	var sf scenarioFile
	if err := json.NewDecoder(f).Decode(&sf); err != nil {
		return nil, xerrors.Errorf("decoding scenario file %s: %w", path, err)
	}
	return &sf, nil
}

func (sf *scenarioFile) plans() []*catalog.Plan {
	plans := make([]*catalog.Plan, 0, len(sf.Plans))
	for _, p := range sf.Plans {
		plans = append(plans, &catalog.Plan{Name: p.Name, Districts: p.Districts})
	}
	return plans
}

// options translates a scenario into simulation options, resolving its plans
// by name through lookup.
func (s *scenarioSpec) options(lookup func(name string) (*catalog.Plan, error)) ([]sim.Option, error) {
	opts := []sim.Option{sim.WithName(s.Name), sim.WithSeed(s.Seed)}
	if s.Voters != 0 {
		opts = append(opts, sim.WithVoterCount(s.Voters))
	}
	if s.Width != 0 || s.Height != 0 {
		opts = append(opts, sim.WithExtent(s.Width, s.Height))
	}
	switch len(s.Parties) {
	case 0:
	case 2:
		opts = append(opts, sim.WithParties(model.NewParty(s.Parties[0]), model.NewParty(s.Parties[1])))
	default:
		return nil, xerrors.Errorf("scenario %q: exactly two parties are required, got %d", s.Name, len(s.Parties))
	}
	if s.Field != nil {
		switch s.Field.Kind {
		case "noise":
			scale := s.Field.Scale
			if scale == 0 {
				scale = defaultNoiseScale
			}
			opts = append(opts, sim.WithPartyField(sim.NewNoise(s.Field.Seed, scale)))
		case "radial":
			opts = append(opts, sim.WithPartyField(sim.Radial{Radius: s.Field.Radius}))
		default:
			return nil, xerrors.Errorf("scenario %q: unknown field kind %q", s.Name, s.Field.Kind)
		}
	}
	if len(s.Plans) > 0 {
		plans := make([]*catalog.Plan, 0, len(s.Plans))
		for _, name := range s.Plans {
			p, err := lookup(name)
			if err != nil {
				return nil, xerrors.Errorf("scenario %q: %w", s.Name, err)
			}
			plans = append(plans, p)
		}
		opts = append(opts, sim.WithGrids(), sim.WithPlans(plans...))
	}
	return opts, nil
}
