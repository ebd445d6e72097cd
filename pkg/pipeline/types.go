package pipeline

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/buildenv"
	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/executor"
	"github.com/voidhawk/xstatic/pkg/fetch"
	"github.com/voidhawk/xstatic/pkg/stage"
	"github.com/voidhawk/xstatic/pkg/storage"
	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
	"github.com/voidhawk/xstatic/pkg/verify"
)

// A Pipeline turns one BuildRequest into one verified, staged static
// binary.  One instance runs per (project, triple) pair; instances
// for different triples share only the cache manager's regions.  No
// stage is internally concurrent.
type Pipeline struct {
	l hclog.Logger

	build      types.TargetTriple
	projectDir string
	lockfile   string
	plan       buildenv.Plan

	cm       *cache.Manager
	resolver *toolchain.Resolver
	fetcher  *fetch.Fetcher
	exec     *executor.Executor
	verifier *verify.Verifier
	stager   *stage.Stager
	store    storage.Storage

	statusMu sync.Mutex
	status   map[string]*Status
}

// A Status is the externally visible state of one triple's run.
type Status struct {
	Triple   string
	Stage    string
	State    string
	Error    string `json:",omitempty"`
	Output   string `json:",omitempty"`
	Started  time.Time
	Finished time.Time `json:",omitempty"`
}
