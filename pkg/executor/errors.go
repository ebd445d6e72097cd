package executor

import (
	"strconv"
)

// ErrCompile is returned when the toolchain invocation fails.  It is
// fatal and never retried: a compile failure is deterministic and
// retrying only wastes cache contention time.
type ErrCompile struct {
	// Stage names the failing step for diagnostics.
	Stage string

	// ExitCode is the build tool's exit status.
	ExitCode int
}

// NewErrCompile returns a new error for the named stage.
func NewErrCompile(stage string, code int) ErrCompile {
	return ErrCompile{stage, code}
}

func (e ErrCompile) Error() string {
	return "compile stage " + e.Stage + " failed with exit code " + strconv.Itoa(e.ExitCode)
}
