package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/urfave/cli/v2"
	"github.com/votegrid/votegrid/catalog"
	"golang.org/x/xerrors"
)

var plansCmd = cli.Command{
	Name:  "plans",
	Usage: "manages the plan catalog",
	Subcommands: []*cli.Command{
		&plansListCmd,
		&plansExportCmd,
		&plansImportCmd,
	},
}

var plansListCmd = cli.Command{
	Name:  "list",
	Usage: "loads the plans of the scenario file and prints their CIDs",
	Action: func(c *cli.Context) error {
		sf, err := loadScenarioFile(c.Path("scenario"))
		if err != nil {
			return err
		}
		store, err := newCatalog(c.Context, sf)
		if err != nil {
			return err
		}
		names, err := store.List(c.Context)
		if err != nil {
			return err
		}
		for _, name := range names {
			p, err := store.Get(c.Context, name)
			if err != nil {
				return err
			}
			id, err := p.CID()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%s\n", name, len(p.Districts), len(p.Districts[0]), id)
		}
		return nil
	},
}

var plansExportCmd = cli.Command{
	Name:      "export",
	Usage:     "writes the plans of the scenario file to a snapshot",
	ArgsUsage: "<snapshot path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return xerrors.New("expected exactly one snapshot path")
		}
		sf, err := loadScenarioFile(c.Path("scenario"))
		if err != nil {
			return err
		}
		store, err := newCatalog(c.Context, sf)
		if err != nil {
			return err
		}
		f, err := os.Create(c.Args().First())
		if err != nil {
			return xerrors.Errorf("creating snapshot file: %w", err)
		}
		w := bufio.NewWriter(f)
		id, header, err := store.Export(c.Context, w)
		if err != nil {
			_ = f.Close()
			return xerrors.Errorf("exporting snapshot: %w", err)
		}
		if err := w.Flush(); err != nil {
			_ = f.Close()
			return xerrors.Errorf("writing snapshot: %w", err)
		}
		if err := f.Close(); err != nil {
			return xerrors.Errorf("closing snapshot file: %w", err)
		}
		_, _ = fmt.Fprintf(c.App.Writer, "exported %d plans, snapshot %s\n", header.Plans, id)
		return nil
	},
}

var plansImportCmd = cli.Command{
	Name:      "import",
	Usage:     "reads a snapshot and prints the plans it holds",
	ArgsUsage: "<snapshot path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return xerrors.New("expected exactly one snapshot path")
		}
		f, err := os.Open(c.Args().First())
		if err != nil {
			return xerrors.Errorf("opening snapshot file: %w", err)
		}
		defer f.Close()

		ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
		if err := catalog.ImportSnapshot(c.Context, bufio.NewReader(f), ds); err != nil {
			return xerrors.Errorf("importing snapshot: %w", err)
		}
		store, err := catalog.NewStore(ds)
		if err != nil {
			return err
		}
		names, err := store.List(c.Context)
		if err != nil {
			return err
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(c.App.Writer, name)
		}
		return nil
	},
}
