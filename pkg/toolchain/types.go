package toolchain

import (
	"path/filepath"

	"github.com/voidhawk/xstatic/pkg/types"
)

// A Spec is the concrete compiler, linker, sysroot and pkg-config
// invocation set for one target.  It is derived deterministically
// from the build platform and the target triple, created once per
// build invocation, and never mutated after creation.
type Spec struct {
	Target    types.TargetTriple
	Compiler  string
	Cxx       string
	Linker    string
	Archiver  string
	Sysroot   string
	PkgConfig []string
	IsCross   bool
}

// PkgConfigLibDir returns the pkg-config search directory rooted in
// the spec's sysroot.  For a native spec this is empty and the host
// default search order applies.
func (s Spec) PkgConfigLibDir() string {
	if s.Sysroot == "" {
		return ""
	}
	return filepath.Join(s.Sysroot, "usr", "lib", "pkgconfig")
}
