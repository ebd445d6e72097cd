package toolchain

import (
	"path/filepath"

	"github.com/voidhawk/xstatic/pkg/types"
)

// crossArchs enumerates the architectures a wrapped cross driver
// exists for.  Anything else has no wrapping strategy and is
// unsupported as a cross target.
var crossArchs = map[string]struct{}{
	"x86_64":  {},
	"aarch64": {},
	"armv7l":  {},
	"riscv64": {},
	"i686":    {},
}

// A Resolver computes toolchain specs for target triples.  Resolution
// is pure: the same build platform, target, and prefix root always
// yield the same spec, so independent pipelines may resolve in
// parallel without coordination.
type Resolver struct {
	prefixRoot string
}

// NewResolver returns a resolver whose cross toolchain roots live
// under the given prefix.  Passing an empty prefix selects /usr,
// which is where distribution cross toolchains install.
func NewResolver(prefixRoot string) *Resolver {
	if prefixRoot == "" {
		prefixRoot = "/usr"
	}
	return &Resolver{prefixRoot: prefixRoot}
}

// Resolve returns the spec for compiling on build for target.  A
// native target gets the host compiler with no sysroot override.  A
// cross target gets a triple-prefixed driver and a sysroot keyed by
// the triple so that library discovery resolves target, not host,
// libraries.
func (r *Resolver) Resolve(build, target types.TargetTriple) (Spec, error) {
	if target.Native(build) {
		return Spec{
			Target:    target,
			Compiler:  "cc",
			Cxx:       "c++",
			Linker:    "cc",
			Archiver:  "ar",
			PkgConfig: []string{"pkg-config"},
		}, nil
	}

	if target.OS != "linux" {
		return Spec{}, NewErrUnsupportedTarget(target)
	}
	if target.ABI != "gnu" && target.ABI != "musl" {
		return Spec{}, NewErrUnsupportedTarget(target)
	}
	if _, ok := crossArchs[target.Arch]; !ok {
		return Spec{}, NewErrUnsupportedTarget(target)
	}

	driver := target.Arch + "-" + target.OS + "-" + target.ABI
	return Spec{
		Target:    target,
		Compiler:  driver + "-gcc",
		Cxx:       driver + "-g++",
		Linker:    driver + "-gcc",
		Archiver:  driver + "-ar",
		Sysroot:   filepath.Join(r.prefixRoot, driver),
		PkgConfig: []string{"pkg-config"},
		IsCross:   true,
	}, nil
}
