package nomad

import (
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/nomad/api"

	"github.com/voidhawk/xstatic/pkg/sched"
	"github.com/voidhawk/xstatic/pkg/types"
)

type nomadProvider struct {
	l hclog.Logger
	c *api.Client

	slots map[string]int
}

func init() {
	sched.RegisterInitCallback(cb)
}

func cb() {
	sched.RegisterCapacityFactory("nomad", New)
}

// New returns a wrapper around a nomad client that implements the
// scheduler's CapacityProvider interface.  Builds dispatch as
// parameterized batch jobs onto workers that run the same binary.
func New(l hclog.Logger) (sched.CapacityProvider, error) {
	c, err := api.NewClient(api.DefaultConfig())
	if err != nil {
		return nil, err
	}

	x := &nomadProvider{
		l:     l.Named("nomad"),
		c:     c,
		slots: make(map[string]int),
	}
	return x, nil
}

func (n *nomadProvider) DispatchBuild(b sched.Build) error {
	r, err := n.runningBuilds()
	if err != nil {
		return err
	}
	if r[b.Triple.String()]+1 > n.slots[b.Triple.String()] {
		return new(sched.ErrNoCapacity)
	}

	res, _, err := n.c.Jobs().Dispatch("xstatic-build", b.ToMap(), nil, "", nil)
	if err != nil {
		n.l.Warn("Nomad error", "error", err)
		return err
	}
	n.l.Debug("Dispatched job", "triple", b.Triple, "pkg", b.Pkg, "eval", res.EvalID, "jid", res.DispatchedJobID)
	return nil
}

func (n *nomadProvider) ListBuilds() ([]sched.Build, error) {
	qopts := &api.QueryOptions{
		Prefix: "xstatic-build/dispatch-",
	}
	jobs, _, err := n.c.Jobs().List(qopts)
	if err != nil {
		return nil, err
	}
	running := []string{}
	for _, job := range jobs {
		if job.Type != "batch" || (job.Status != "running" && job.Status != "pending") {
			continue
		}
		running = append(running, job.ID)
		n.l.Trace("Searched Jobs", "job", job)
	}
	// Jobs that vanish or carry unparseable metadata between List and
	// Info are skipped rather than reported as empty builds.
	builds := make([]sched.Build, 0, len(running))
	for _, id := range running {
		job, _, err := n.c.Jobs().Info(id, nil)
		if err != nil {
			continue
		}
		b, ok := buildFromMeta(job.Meta)
		if !ok {
			continue
		}
		builds = append(builds, b)
		n.l.Trace("Found running Build", "build", b)
	}
	return builds, nil
}

// buildFromMeta reconstructs a Build from dispatch job metadata.  The
// second return is false when the metadata does not describe a build.
func buildFromMeta(meta map[string]string) (sched.Build, bool) {
	triple, err := types.ParseTriple(meta["triple"])
	if err != nil {
		return sched.Build{}, false
	}
	return sched.Build{
		Triple: triple,
		Pkg:    meta["package"],
		Rev:    meta["revision"],
	}, true
}

func (n *nomadProvider) SetSlots(s map[string]int) {
	n.slots = s
}

func (n *nomadProvider) runningBuilds() (map[string]int, error) {
	running := make(map[string]int)

	builds, err := n.ListBuilds()
	if err != nil {
		return nil, new(sched.ErrNoCapacity)
	}

	for _, b := range builds {
		running[b.Triple.String()]++
	}
	return running, nil
}
