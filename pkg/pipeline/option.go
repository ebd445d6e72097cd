package pipeline

import (
	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/buildenv"
	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/executor"
	"github.com/voidhawk/xstatic/pkg/fetch"
	"github.com/voidhawk/xstatic/pkg/storage"
	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
)

// Option configures a Pipeline during construction.
type Option func(*Pipeline) error

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(p *Pipeline) error {
		p.l = l.Named("pipeline")
		return nil
	}
}

// WithBuildPlatform declares the platform the orchestrator itself
// runs on.
func WithBuildPlatform(t types.TargetTriple) Option {
	return func(p *Pipeline) error {
		p.build = t
		return nil
	}
}

// WithProject points the pipeline at the source tree and its
// lockfile.  Both are treated as opaque, read-only input.
func WithProject(dir, lockfile string) Option {
	return func(p *Pipeline) error {
		p.projectDir = dir
		p.lockfile = lockfile
		return nil
	}
}

// WithPlan supplies the static link plan composed into the build
// environment.
func WithPlan(plan buildenv.Plan) Option {
	return func(p *Pipeline) error {
		p.plan = plan
		return nil
	}
}

// WithCacheManager shares an existing cache manager between
// pipelines.  Regions are the only cross-pipeline shared state.
func WithCacheManager(cm *cache.Manager) Option {
	return func(p *Pipeline) error {
		p.cm = cm
		return nil
	}
}

// WithResolver overrides the default toolchain resolver.
func WithResolver(r *toolchain.Resolver) Option {
	return func(p *Pipeline) error {
		p.resolver = r
		return nil
	}
}

// WithFetcher overrides the default dependency fetcher.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(p *Pipeline) error {
		p.fetcher = f
		return nil
	}
}

// WithExecutor overrides the default build executor.
func WithExecutor(e *executor.Executor) Option {
	return func(p *Pipeline) error {
		p.exec = e
		return nil
	}
}

// WithStatusStore persists terminal status transitions to a durable
// store alongside the in-memory view.  Without it the status map is
// the only record and vanishes with the process.
func WithStatusStore(s storage.Storage) Option {
	return func(p *Pipeline) error {
		p.store = s
		return nil
	}
}
