package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/urfave/cli/v2"
	"github.com/votegrid/votegrid/aggregate"
	"github.com/votegrid/votegrid/catalog"
	"github.com/votegrid/votegrid/sim"
	"golang.org/x/xerrors"
)

var runCmd = cli.Command{
	Name:  "run",
	Usage: "runs every scenario in parallel and prints the result of each step",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "steps",
			Usage:   "number of steps per scenario; defaults to one cycle through its plans",
			EnvVars: []string{"VOTEGRID_STEPS"},
		},
	},
	Action: func(c *cli.Context) error {
		sf, err := loadScenarioFile(c.Path("scenario"))
		if err != nil {
			return err
		}
		sims, err := buildSimulations(c.Context, sf)
		if err != nil {
			return err
		}
		steps := c.Int("steps")
		if steps <= 0 {
			for _, s := range sims {
				steps = max(steps, s.Selector().Len())
			}
		}
		summaries, err := sim.RunAll(c.Context, sims, steps)
		if err != nil {
			return xerrors.Errorf("running scenarios: %w", err)
		}
		for _, summary := range summaries {
			for step, result := range summary.Results {
				printResult(c.App.Writer, fmt.Sprintf("%s step %d", summary.Name, step), result)
			}
		}
		return nil
	},
}

// newCatalog returns an in-memory catalog holding the plans of sf.
func newCatalog(ctx context.Context, sf *scenarioFile) (*catalog.Store, error) {
	store, err := catalog.NewStore(ds_sync.MutexWrap(datastore.NewMapDatastore()))
	if err != nil {
		return nil, err
	}
	for _, p := range sf.plans() {
		id, err := store.Put(ctx, p)
		if err != nil {
			return nil, xerrors.Errorf("loading plan %q: %w", p.Name, err)
		}
		log.Debugw("Loaded plan", "name", p.Name, "cid", id)
	}
	return store, nil
}

func buildSimulations(ctx context.Context, sf *scenarioFile) ([]*sim.Simulation, error) {
	if len(sf.Scenarios) == 0 {
		return nil, xerrors.New("scenario file lists no scenarios")
	}
	store, err := newCatalog(ctx, sf)
	if err != nil {
		return nil, err
	}
	lookup := func(name string) (*catalog.Plan, error) { return store.Get(ctx, name) }
	sims := make([]*sim.Simulation, 0, len(sf.Scenarios))
	for _, spec := range sf.Scenarios {
		opts, err := spec.options(lookup)
		if err != nil {
			return nil, err
		}
		s, err := sim.NewSimulation(opts...)
		if err != nil {
			return nil, xerrors.Errorf("building scenario %q: %w", spec.Name, err)
		}
		sims = append(sims, s)
	}
	return sims, nil
}

func printResult(w io.Writer, title string, result *aggregate.ResultEvent) {
	_, _ = fmt.Fprintf(w, "%s: %d districts\n", title, result.NumDistricts())
	for _, party := range result.Parties() {
		_, _ = fmt.Fprintf(w, "  %-12s %6.2f%% %3d seats\n", party, 100*result.PartyPercent(party), result.Seats(party))
	}
	for _, d := range result.Districts() {
		var counts []string
		for _, party := range result.Parties() {
			counts = append(counts, fmt.Sprintf("%s=%d", party, result.DistrictVotersByParty(d, party)))
		}
		winner, _ := result.Winner(d)
		_, _ = fmt.Fprintf(w, "  %-12s won by %s (%s)\n", d, winner, strings.Join(counts, " "))
	}
}
