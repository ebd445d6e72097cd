package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

// New returns a manager rooted at the configured directory.
func New(opts ...Option) (*Manager, error) {
	m := Manager{
		l:       hclog.NewNullLogger(),
		regions: make(map[string]*Region),
	}
	for _, o := range opts {
		if err := o(&m); err != nil {
			return nil, err
		}
	}
	if m.root == "" {
		m.root = defaultRoot()
	}
	return &m, nil
}

// Root returns the directory all regions live under.
func (m *Manager) Root() string {
	return m.root
}

// Region registers a named region with the given sharing mode, or
// returns the existing registration.  Requesting a conflicting mode
// for an already registered name is a configuration error, reported
// here rather than surfacing later as a runtime race.
func (m *Manager) Region(name string, mode SharingMode) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.regions[name]; ok {
		if r.Mode != mode {
			return nil, NewErrSharingConflict(name, r.Mode, mode)
		}
		return r, nil
	}

	r := &Region{
		Name: name,
		Mode: mode,
		path: filepath.Join(m.root, name),
	}
	if err := os.MkdirAll(r.path, 0o755); err != nil {
		return nil, err
	}
	m.regions[name] = r
	m.l.Debug("Registered cache region", "region", name, "mode", mode)
	return r, nil
}

// Acquire takes possession of a region under its sharing mode.  The
// returned handle must be released by the caller; Locked acquisitions
// block until the region frees up or the context is cancelled.
func (m *Manager) Acquire(ctx context.Context, r *Region) (*Handle, error) {
	f, err := os.OpenFile(r.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	switch r.Mode {
	case Exclusive:
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			return nil, NewErrRegionBusy(r.Name)
		}
	case Locked:
		if err := flockWait(ctx, f, unix.LOCK_EX); err != nil {
			f.Close()
			return nil, err
		}
	case ConcurrentSafe:
		if err := flockWait(ctx, f, unix.LOCK_SH); err != nil {
			f.Close()
			return nil, err
		}
	}

	m.l.Trace("Acquired cache region", "region", r.Name, "mode", r.Mode)
	return &Handle{region: r, f: f}, nil
}

// flockWait polls for the lock so that a blocked waiter still honors
// context cancellation.
func flockWait(ctx context.Context, f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Release drops the lock.  Calling it more than once is safe, which
// keeps deferred releases harmless on paths that released early.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	unix.Flock(int(h.f.Fd()), unix.LOCK_UN)
	h.f.Close()
}

// Region returns the region this handle holds.
func (h *Handle) Region() *Region {
	return h.region
}
