package fetch

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/storage"
)

// A Fetcher materializes locked dependency graphs into the local
// store.  After a successful fetch the build proceeds with no further
// network access.
type Fetcher struct {
	l hclog.Logger

	cm     *cache.Manager
	idx    storage.Storage
	client *http.Client

	retries  int
	backoff  time.Duration
	progress bool
}

// Resolved is the materialized form of a dependency graph.  Paths
// maps each entry name to its file in the store.
type Resolved struct {
	StorePath string
	Paths     map[string]string
}

// indexRecord is the persisted metadata for one fetched entry.
type indexRecord struct {
	Name      string
	Version   string
	Source    string
	Integrity string
	Size      int64
	FetchedAt time.Time
}
