package source

import (
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"
)

// A Checkout manages the git side of the project source tree.  The
// orchestrator treats the tree's contents as opaque; this type only
// pins it to a revision before a build.
type Checkout struct {
	l    hclog.Logger
	path string
	url  string
	mu   *sync.Mutex
	repo *git.Repository
}
