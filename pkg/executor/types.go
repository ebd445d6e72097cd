package executor

import (
	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/cache"
)

// An Executor invokes the compile step against a resolved toolchain
// and composed environment.  All dependencies must already be
// materialized; the build itself runs offline.
type Executor struct {
	l hclog.Logger

	cm   *cache.Manager
	tool string

	// extra args appended to every invocation, settable for build
	// tools that need flavor flags.
	extraArgs []string
}
