package cache

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-hclog"
)

// Option configures a Manager during construction.
type Option func(*Manager) error

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(m *Manager) error {
		m.l = l.Named("cache")
		return nil
	}
}

// WithRoot overrides the directory all regions live under.
func WithRoot(root string) Option {
	return func(m *Manager) error {
		m.root = root
		return nil
	}
}

func defaultRoot() string {
	return filepath.Join(xdg.CacheHome, "xstatic")
}
