package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("votegrid")

func main() {
	app := &cli.App{
		Name:  "votegrid",
		Usage: "tabulate districting plans over simulated populations",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "scenario",
				Value:   "scenario.json",
				Usage:   "path to the scenario file",
				EnvVars: []string{"VOTEGRID_SCENARIO"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level of the votegrid loggers",
				EnvVars: []string{"VOTEGRID_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			return logging.SetLogLevelRegex("votegrid.*", c.String("log-level"))
		},
		Commands: []*cli.Command{
			&runCmd,
			&playCmd,
			&plansCmd,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %+v\n", err)
		os.Exit(1)
	}
}
