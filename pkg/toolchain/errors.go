package toolchain

import (
	"github.com/voidhawk/xstatic/pkg/types"
)

// ErrUnsupportedTarget is returned when no wrapping strategy exists
// for the requested triple.
type ErrUnsupportedTarget struct {
	triple types.TargetTriple
}

// NewErrUnsupportedTarget returns a new error specialized to the
// triple that could not be resolved.
func NewErrUnsupportedTarget(t types.TargetTriple) ErrUnsupportedTarget {
	return ErrUnsupportedTarget{t}
}

func (e ErrUnsupportedTarget) Error() string {
	return "no toolchain strategy for target " + e.triple.String()
}
