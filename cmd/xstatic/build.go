package main

import (
	"path/filepath"
	"sync"

	"github.com/voidhawk/xstatic/pkg/config"
	"github.com/voidhawk/xstatic/pkg/pipeline"
	"github.com/voidhawk/xstatic/pkg/types"
)

type buildCmd struct {
	Package string   `arg:"" optional:"" help:"Package identifier to build."`
	Target  []string `short:"t" help:"Target triple(s); defaults to the configured targets."`
	Output  string   `short:"o" help:"Output directory; defaults to the configured one."`
}

// Run builds the requested package for every target.  One pipeline
// instance runs per triple; pipelines share only the cache manager's
// regions and each writes to a distinct output name, so they run in
// parallel.
func (c *buildCmd) Run(g *globals) error {
	pkg := c.Package
	if pkg == "" {
		pkg = g.cfg.Package
	}
	if pkg == "" {
		return config.NewErrMissingField("package")
	}
	outputDir := c.Output
	if outputDir == "" {
		outputDir = g.cfg.OutputDir
	}
	targetStrs := c.Target
	if len(targetStrs) == 0 {
		targetStrs = g.cfg.Targets
	}

	build, err := buildPlatform(g.cfg)
	if err != nil {
		return err
	}
	targets := make([]types.TargetTriple, 0, len(targetStrs))
	for _, ts := range targetStrs {
		t, err := types.ParseTriple(ts)
		if err != nil {
			return err
		}
		targets = append(targets, t)
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

	ctx := signalContext()
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target types.TargetTriple) {
			defer wg.Done()
			p, err := pipeline.New(
				pipeline.WithLogger(g.l),
				pipeline.WithBuildPlatform(build),
				pipeline.WithProject(g.cfg.ProjectDir, g.cfg.Lockfile),
				pipeline.WithPlan(g.cfg.Plan()),
				pipeline.WithCacheManager(cm),
				pipeline.WithFetcher(fetcher),
				pipeline.WithStatusStore(store),
			)
			if err != nil {
				errs[i] = err
				return
			}
			// Multi-target runs get per-triple output directories so
			// sibling artifacts can never collide on the package name.
			dir := outputDir
			if len(targets) > 1 {
				dir = filepath.Join(outputDir, target.String())
			}
			req := types.BuildRequest{
				Triple:    target,
				Package:   pkg,
				Profile:   g.cfg.Profile,
				OutputDir: dir,
			}
			_, errs[i] = p.Run(ctx, req)
		}(i, target)
	}
	wg.Wait()

	// Sibling pipelines are unaffected by each other's failures; the
	// process reports the first one.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
