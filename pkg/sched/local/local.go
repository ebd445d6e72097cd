package local

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/sched"
)

// Local runs pipelines in-process, bounded by per-triple slots.  A
// build for a triple already at capacity is refused and retried by
// the scheduler later.
type Local struct {
	l hclog.Logger

	runner func(sched.Build) error

	mu      sync.Mutex
	slots   map[string]int
	running map[string]int
	active  []sched.Build
}

func init() {
	sched.RegisterInitCallback(cb)
}

func cb() {
	sched.RegisterCapacityFactory("local", New)
}

// New returns a local capacity provider.  A runner must be injected
// with SetRunner before the first dispatch.
func New(l hclog.Logger) (sched.CapacityProvider, error) {
	return &Local{
		l:       l.Named("local"),
		slots:   map[string]int{},
		running: map[string]int{},
	}, nil
}

// SetRunner injects the function that actually executes a build.
// The scheduler package cannot depend on the pipeline directly
// without creating an import cycle through the status endpoints.
func (c *Local) SetRunner(r func(sched.Build) error) {
	c.runner = r
}

// SetSlots configures how many builds may run concurrently per
// triple.  Unlisted triples get one slot.
func (c *Local) SetSlots(s map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = s
}

// DispatchBuild spins off a build if the triple has a free slot.
// Distinct triples run in parallel sharing only the cache regions.
func (c *Local) DispatchBuild(b sched.Build) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	limit := c.slots[b.Triple.String()]
	if limit == 0 {
		limit = 1
	}
	if c.running[b.Triple.String()] >= limit {
		return new(sched.ErrNoCapacity)
	}

	c.running[b.Triple.String()]++
	c.active = append(c.active, b)
	go c.run(b)
	return nil
}

func (c *Local) run(b sched.Build) {
	c.l.Info("Building locally", "build", b)
	if err := c.runner(b); err != nil {
		c.l.Warn("Error building package", "build", b, "err", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.running[b.Triple.String()]--
	for i, cur := range c.active {
		if cur.Equal(b) {
			c.active = append(c.active[:i], c.active[i+1:]...)
			break
		}
	}
}

// ListBuilds returns the currently in progress builds.
func (c *Local) ListBuilds() ([]sched.Build, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sched.Build, len(c.active))
	copy(out, c.active)
	return out, nil
}
