package main

import (
	"github.com/voidhawk/xstatic/pkg/lock"
)

type fetchCmd struct {
	Lockfile string `arg:"" optional:"" help:"Lockfile to materialize; defaults to the configured one."`
}

// Run fetches the full locked graph so that subsequent builds can run
// offline.
func (c *fetchCmd) Run(g *globals) error {
	lockfile := c.Lockfile
	if lockfile == "" {
		lockfile = g.cfg.Lockfile
	}

	graph, err := lock.Load(lockfile)
	if err != nil {
		return err
	}

	cm, err := setupCache(g)
	if err != nil {
		return err
	}
	store, err := setupStore(g, cm)
	if err != nil {
		return err
	}
	fetcher := setupFetcher(g, cm, store)

	res, err := fetcher.Fetch(signalContext(), graph)
	if err != nil {
		return err
	}
	g.l.Info("Dependency graph materialized", "entries", len(res.Paths), "store", res.StorePath)
	return nil
}
