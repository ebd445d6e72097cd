package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/buildenv"
	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/executor"
	"github.com/voidhawk/xstatic/pkg/fetch"
	"github.com/voidhawk/xstatic/pkg/lock"
	"github.com/voidhawk/xstatic/pkg/stage"
	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
	"github.com/voidhawk/xstatic/pkg/verify"
)

// New assembles a pipeline.  Components not provided through options
// are constructed with their defaults around the shared cache
// manager.
func New(opts ...Option) (*Pipeline, error) {
	p := Pipeline{
		l:      hclog.NewNullLogger(),
		status: make(map[string]*Status),
	}
	for _, o := range opts {
		if err := o(&p); err != nil {
			return nil, err
		}
	}

	if p.cm == nil {
		cm, err := cache.New(cache.WithLogger(p.l))
		if err != nil {
			return nil, err
		}
		p.cm = cm
	}
	if p.resolver == nil {
		p.resolver = toolchain.NewResolver("")
	}
	if p.fetcher == nil {
		p.fetcher = fetch.New(p.cm, fetch.WithLogger(p.l))
	}
	if p.exec == nil {
		p.exec = executor.New(p.cm, executor.WithLogger(p.l))
	}
	p.verifier = verify.New(p.l)
	p.stager = stage.New(p.l)
	return &p, nil
}

// Run executes the stages in strict dependency order for one request
// and returns the staged output path.  The first fatal error halts
// this pipeline only; sibling pipelines for other triples are
// unaffected.  Configuration problems surface before any cache or
// network resource is touched.
func (p *Pipeline) Run(ctx context.Context, req types.BuildRequest) (string, error) {
	p.begin(req.Triple)

	p.setStage(req.Triple, "resolve")
	spec, err := p.resolver.Resolve(p.build, req.Triple)
	if err != nil {
		return "", p.fail(req.Triple, err)
	}

	// Composition is pure, so linkage plan conflicts are caught here,
	// ahead of anything that acquires a region or hits the network.
	p.setStage(req.Triple, "compose")
	env, err := buildenv.Compose(spec, p.plan)
	if err != nil {
		return "", p.fail(req.Triple, err)
	}

	p.setStage(req.Triple, "fetch")
	graph, err := lock.Load(p.lockfile)
	if err != nil {
		return "", p.fail(req.Triple, err)
	}
	if _, err := p.fetcher.Fetch(ctx, graph); err != nil {
		return "", p.fail(req.Triple, err)
	}

	p.setStage(req.Triple, "build")
	artifact, err := p.exec.Execute(ctx, p.projectDir, req, spec, env)
	if err != nil {
		return "", p.fail(req.Triple, err)
	}

	p.setStage(req.Triple, "verify")
	if err := p.verifier.Verify(artifact, req.Triple); err != nil {
		return "", p.fail(req.Triple, err)
	}

	p.setStage(req.Triple, "stage")
	staged, err := p.stager.Stage(artifact, req.OutputDir, req.Package)
	if err != nil {
		return "", p.fail(req.Triple, err)
	}

	p.done(req.Triple, staged)
	p.l.Info("Build complete", "triple", req.Triple, "output", staged)
	return staged, nil
}

func (p *Pipeline) begin(t types.TargetTriple) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status[t.String()] = &Status{
		Triple:  t.String(),
		State:   "running",
		Started: time.Now().UTC(),
	}
}

func (p *Pipeline) setStage(t types.TargetTriple, stage string) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if s, ok := p.status[t.String()]; ok {
		s.Stage = stage
	}
}

// fail records the error and returns it unchanged so callers can
// classify it; the single human readable line names the failing stage
// and the underlying cause.
func (p *Pipeline) fail(t types.TargetTriple, err error) error {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	s, ok := p.status[t.String()]
	if ok {
		s.State = "failed"
		s.Error = err.Error()
		s.Finished = time.Now().UTC()
		p.persist(s)
	}
	stageName := "unknown"
	if ok {
		stageName = s.Stage
	}
	p.l.Error("Build failed", "triple", t, "stage", stageName, "error", err)
	return err
}

func (p *Pipeline) done(t types.TargetTriple, output string) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if s, ok := p.status[t.String()]; ok {
		s.State = "succeeded"
		s.Output = output
		s.Finished = time.Now().UTC()
		p.persist(s)
	}
}

// persist writes a terminal status atom through the configured store,
// keyed by triple so later invocations can read back the last result.
func (p *Pipeline) persist(s *Status) {
	if p.store == nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := p.store.Put([]byte("status/"+s.Triple), b); err != nil {
		p.l.Warn("Error persisting build status", "triple", s.Triple, "error", err)
	}
}
