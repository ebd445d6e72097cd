package cache

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// SharingMode fixes how concurrently a region may be used.  A
// region's mode is set at registration and never changes for its
// lifetime.
type SharingMode int

const (
	// Exclusive admits one holder at a time and fails fast when the
	// region is busy.  Used for package manager state that is not
	// safe for concurrent writers.
	Exclusive SharingMode = iota

	// Locked serializes access; all waiters proceed in turn.  Used
	// for dependency index caches.
	Locked

	// ConcurrentSafe admits any number of holders in parallel.  Used
	// for per-package object caches keyed by content hash, where
	// collisions are naturally partitioned.
	ConcurrentSafe
)

func (m SharingMode) String() string {
	switch m {
	case Exclusive:
		return "exclusive"
	case Locked:
		return "locked"
	case ConcurrentSafe:
		return "concurrent-safe"
	}
	return "unknown"
}

// A Region is one persistent cache directory category.  Regions are
// created on first use and never destroyed by this system; retention
// is external policy.
type Region struct {
	Name string
	Mode SharingMode

	path string
}

// Path returns the directory backing this region.
func (r *Region) Path() string {
	return r.path
}

// A Handle is scoped possession of a region.  Release is idempotent
// and must run on every exit path, including cancellation.
type Handle struct {
	region *Region

	f        *os.File
	mu       sync.Mutex
	released bool
}

// Manager owns the set of named cache regions and enforces their
// sharing modes.  It is the only state shared between pipelines.
type Manager struct {
	l    hclog.Logger
	root string

	mu      sync.Mutex
	regions map[string]*Region
}

// The standard region names used by the pipeline.
const (
	RegionDepsIndex = "deps-index"
	RegionObjects   = "objects"
	RegionPkgMgr    = "pkgmgr"
)
