package sched

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/types"
)

// A Build is all the information required to dispatch one pipeline
// run somewhere.
type Build struct {
	Triple types.TargetTriple
	Pkg    string
	Rev    string
}

// Equal reports whether two builds describe the same work.
func (b Build) Equal(c Build) bool {
	return b.Triple == c.Triple && b.Pkg == c.Pkg && b.Rev == c.Rev
}

// ToMap flattens a build for transports that carry string metadata.
func (b Build) ToMap() map[string]string {
	return map[string]string{
		"triple":   b.Triple.String(),
		"package":  b.Pkg,
		"revision": b.Rev,
	}
}

// CapacityProviders are a way for builds to be run.
type CapacityProvider interface {
	DispatchBuild(Build) error
	ListBuilds() ([]Build, error)
	SetSlots(map[string]int)
}

// Scheduler holds builds ready and dispatches them using a
// CapacityProvider.
type Scheduler struct {
	l hclog.Logger

	queue      []Build
	queueMutex *sync.Mutex

	capacityProvider CapacityProvider
}
