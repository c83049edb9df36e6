package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/votegrid/votegrid/aggregate"
	"github.com/votegrid/votegrid/sim"
	"golang.org/x/xerrors"
)

const defaultPlayInterval = 500 * time.Millisecond

var playCmd = cli.Command{
	Name:  "play",
	Usage: "steps one scenario on a timer, printing each result and the focused district",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "name of the scenario to play; defaults to the first",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Value:   defaultPlayInterval,
			Usage:   "time between steps",
			EnvVars: []string{"VOTEGRID_INTERVAL"},
		},
		&cli.IntFlag{
			Name:  "steps",
			Usage: "number of steps to play; zero plays until interrupted",
		},
		&cli.Float64SliceFlag{
			Name:  "hover",
			Usage: "x,y position to focus after every step",
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
		s := sims[0]
		if name := c.String("name"); name != "" {
			s = nil
			for _, candidate := range sims {
				if candidate.Name() == name {
					s = candidate
					break
				}
			}
			if s == nil {
				return xerrors.Errorf("no scenario named %q", name)
			}
		}
		hover := c.Float64Slice("hover")
		if len(hover) != 0 && len(hover) != 2 {
			return xerrors.Errorf("hover takes an x and a y, got %d values", len(hover))
		}

		player, err := sim.NewPlayer(s, c.Duration("interval"))
		if err != nil {
			return err
		}
		err = player.Play(c.Context, c.Int("steps"), func(step int, result *aggregate.ResultEvent) {
			printResult(c.App.Writer, fmt.Sprintf("%s step %d", s.Name(), step), result)
			if len(hover) == 0 {
				return
			}
			focus, ok, err := s.Hover(hover[0], hover[1])
			switch {
			case err != nil:
				log.Warnw("Failed to hover", "x", hover[0], "y", hover[1], "err", err)
			case ok:
				if adv, ok := aggregate.Advantage(focus); ok {
					_, _ = fmt.Fprintf(c.App.Writer, "  focus %s: %s advantage %d\n", focus.District, adv.Leader, adv.Margin)
				}
			}
		})
		if c.Context.Err() != nil {
			// Interrupted by the user.
			return nil
		}
		return err
	},
}
