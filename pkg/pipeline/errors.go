package pipeline

import (
	"errors"

	"github.com/voidhawk/xstatic/pkg/buildenv"
	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/executor"
	"github.com/voidhawk/xstatic/pkg/fetch"
	"github.com/voidhawk/xstatic/pkg/lock"
	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
	"github.com/voidhawk/xstatic/pkg/verify"
)

// Exit codes per failure class.  Configuration problems, transient
// network exhaustion, integrity violations, compile failures and
// verification failures each get a distinct status so callers can
// tell them apart without parsing output.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitNetwork       = 3
	ExitIntegrity     = 4
	ExitCompile       = 5
	ExitVerification  = 6
)

// ExitCode classifies an error from Run into the failure taxonomy.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		invalidTriple   types.ErrInvalidTriple
		unsupported     toolchain.ErrUnsupportedTarget
		sharingConflict cache.ErrSharingConflict
		regionBusy      cache.ErrRegionBusy
		linkConflict    buildenv.ErrConflictingLinkage
		badLockfile     lock.ErrMalformedLockfile
		network         fetch.ErrNetwork
		integrity       fetch.ErrIntegrity
		compile         executor.ErrCompile
		archMismatch    verify.ErrArchitectureMismatch
		dynLinkage      verify.ErrDynamicLinkage
	)

	switch {
	case errors.As(err, &invalidTriple),
		errors.As(err, &unsupported),
		errors.As(err, &sharingConflict),
		errors.As(err, &regionBusy),
		errors.As(err, &linkConflict),
		errors.As(err, &badLockfile):
		return ExitConfiguration
	case errors.As(err, &network):
		return ExitNetwork
	case errors.As(err, &integrity):
		return ExitIntegrity
	case errors.As(err, &compile):
		return ExitCompile
	case errors.As(err, &archMismatch), errors.As(err, &dynLinkage):
		return ExitVerification
	}
	return ExitFailure
}
