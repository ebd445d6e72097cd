package main

import (
	"path/filepath"

	"github.com/voidhawk/xstatic/pkg/pipeline"
	"github.com/voidhawk/xstatic/pkg/sched"
	"github.com/voidhawk/xstatic/pkg/sched/local"
	_ "github.com/voidhawk/xstatic/pkg/sched/nomad"
	"github.com/voidhawk/xstatic/pkg/source"
	"github.com/voidhawk/xstatic/pkg/types"
	"github.com/voidhawk/xstatic/pkg/web"
)

type serveCmd struct {
	Bind string `help:"Address for the status server." default:":8080"`
	Rev  string `help:"Project revision to build; defaults to the checkout as-is."`
}

// Run enqueues the configured targets and serves build status while
// the scheduler dispatches them through the capacity provider.
func (c *serveCmd) Run(g *globals) error {
	build, err := buildPlatform(g.cfg)
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

	if g.cfg.ProjectURL != "" {
		checkout := source.New(g.l)
		checkout.SetBasepath(g.cfg.ProjectDir)
		checkout.SetURL(g.cfg.ProjectURL)
		if err := checkout.Bootstrap(); err != nil {
			return err
		}
		if err := checkout.Fetch(); err != nil {
			return err
		}
		if c.Rev != "" {
			if _, err := checkout.Checkout(c.Rev); err != nil {
				return err
			}
		}
		// Builds carry the resolved revision so queue dedup and
		// dispatch metadata name exactly what is being built.
		rev, err := checkout.At()
		if err != nil {
			return err
		}
		c.Rev = rev
		g.l.Info("Project checkout ready", "rev", rev)
	}

	// One pipeline per triple up front; they share the cache manager
	// and nothing else.
	pipelines := make(map[string]*pipeline.Pipeline, len(g.cfg.Targets))
	builds := make([]sched.Build, 0, len(g.cfg.Targets))
	for _, ts := range g.cfg.Targets {
		target, err := types.ParseTriple(ts)
		if err != nil {
			return err
		}
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
			return err
		}
		pipelines[target.String()] = p
		builds = append(builds, sched.Build{Triple: target, Pkg: g.cfg.Package, Rev: c.Rev})
	}

	sched.SetLogger(g.l)
	sched.DoCallbacks()
	provider, err := sched.ConstructCapacityProvider(g.cfg.CapacityProvider)
	if err != nil {
		return err
	}
	provider.SetSlots(g.cfg.BuildSlots)

	ctx := signalContext()
	if lp, ok := provider.(*local.Local); ok {
		lp.SetRunner(func(b sched.Build) error {
			p := pipelines[b.Triple.String()]
			req := types.BuildRequest{
				Triple:    b.Triple,
				Package:   b.Pkg,
				Profile:   g.cfg.Profile,
				OutputDir: filepath.Join(g.cfg.OutputDir, b.Triple.String()),
			}
			_, err := p.Run(ctx, req)
			return err
		})
	}

	scheduler := sched.NewScheduler(g.l, provider)
	scheduler.Enqueue(builds...)
	go scheduler.Run(ctx)

	srv, err := web.New(g.l)
	if err != nil {
		return err
	}
	srv.Mount("/scheduler", scheduler.HTTPEntry())
	for triple, p := range pipelines {
		srv.Mount("/pipelines/"+triple, p.HTTPEntry())
	}
	return srv.Serve(c.Bind)
}
