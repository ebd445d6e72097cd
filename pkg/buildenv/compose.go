package buildenv

import (
	"strings"

	"github.com/voidhawk/xstatic/pkg/toolchain"
)

// Compose builds the environment required to statically link the plan
// against the resolved toolchain.  Target-specific search paths are
// ordered strictly before any host default so a cross build can never
// accidentally pick up a host library.  The plan gets exactly one
// linker; mixing linkers per library is disallowed.
func Compose(spec toolchain.Spec, plan Plan) (Environment, error) {
	modes := make(map[string]LinkMode, len(plan))
	for _, d := range plan {
		if prev, seen := modes[d.Library]; seen && prev != d.Mode {
			return nil, NewErrConflictingLinkage(d.Library)
		}
		modes[d.Library] = d.Mode
	}

	env := Environment{
		"CC":         spec.Compiler,
		"CXX":        spec.Cxx,
		"AR":         spec.Archiver,
		"LD":         spec.Linker,
		"PKG_CONFIG": strings.Join(spec.PkgConfig, " "),
	}
	env["CARGO_TARGET_"+tripleKey(spec)+"_LINKER"] = spec.Linker

	anyStatic := false
	var searchPaths []string
	for _, d := range plan {
		if d.Mode != Static {
			continue
		}
		anyStatic = true
		env[libKey(d.Library)+"_STATIC"] = "1"
		if d.SearchPath != "" {
			searchPaths = append(searchPaths, d.SearchPath)
		}
	}

	// Target-specific paths first, the toolchain's sysroot libdir
	// second; host defaults only apply on native builds where the
	// target root collapses to the host root.
	if libdir := spec.PkgConfigLibDir(); libdir != "" {
		searchPaths = append(searchPaths, libdir)
	}
	if len(searchPaths) > 0 {
		env["PKG_CONFIG_PATH"] = strings.Join(searchPaths, ":")
	}
	if spec.IsCross {
		env["PKG_CONFIG_SYSROOT_DIR"] = spec.Sysroot
		if libdir := spec.PkgConfigLibDir(); libdir != "" {
			env["PKG_CONFIG_LIBDIR"] = libdir
		}
	}

	if anyStatic {
		env["PKG_CONFIG_ALL_STATIC"] = "1"
		env["RUSTFLAGS"] = "-C target-feature=+crt-static"

		ldflags := make([]string, 0, len(searchPaths)+1)
		for _, p := range searchPaths {
			ldflags = append(ldflags, "-L"+p)
		}
		ldflags = append(ldflags, "-static")
		env["LDFLAGS"] = strings.Join(ldflags, " ")
	}

	return env, nil
}

// tripleKey renders a triple the way cargo expects it in environment
// variable names.
func tripleKey(spec toolchain.Spec) string {
	return strings.ToUpper(strings.ReplaceAll(spec.Target.String(), "-", "_"))
}

// libKey normalizes a library name into an environment marker prefix,
// e.g. openssl becomes OPENSSL and libz-sys becomes LIBZ_SYS.
func libKey(lib string) string {
	key := strings.ToUpper(lib)
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, ".", "_")
	return key
}
