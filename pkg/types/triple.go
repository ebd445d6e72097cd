package types

import (
	"strings"
)

// A TargetTriple identifies a compilation target.  Triples are
// immutable once parsed and are used as keys for toolchain and cache
// lookups.
type TargetTriple struct {
	Arch   string
	Vendor string
	OS     string
	ABI    string
}

// archAliases maps the convenience spellings seen in configs and on
// the command line onto the canonical GNU arch names.
var archAliases = map[string]string{
	"arm64": "aarch64",
	"amd64": "x86_64",
	"x64":   "x86_64",
}

func (t TargetTriple) String() string {
	return t.Arch + "-" + t.Vendor + "-" + t.OS + "-" + t.ABI
}

// Native computes whether compiling for t on the given build platform
// is a native or a cross compile.  The vendor field carries no
// machine semantics and is ignored.
func (t TargetTriple) Native(build TargetTriple) bool {
	return t.Arch == build.Arch && t.OS == build.OS && t.ABI == build.ABI
}

// ParseTriple parses a target triple of the form arch[-vendor]-os[-abi].
// Two and three component forms fill in "unknown" for the vendor and
// "gnu" for the ABI.  Arch aliases such as arm64 and amd64 are
// normalized to their canonical names.
func ParseTriple(s string) (TargetTriple, error) {
	parts := strings.Split(s, "-")
	t := TargetTriple{Vendor: "unknown", ABI: "gnu"}
	switch len(parts) {
	case 2:
		t.Arch, t.OS = parts[0], parts[1]
	case 3:
		t.Arch, t.OS, t.ABI = parts[0], parts[1], parts[2]
	case 4:
		t.Arch, t.Vendor, t.OS, t.ABI = parts[0], parts[1], parts[2], parts[3]
	default:
		return TargetTriple{}, NewErrInvalidTriple(s)
	}
	if canonical, ok := archAliases[t.Arch]; ok {
		t.Arch = canonical
	}
	if t.Arch == "" || t.OS == "" {
		return TargetTriple{}, NewErrInvalidTriple(s)
	}
	return t, nil
}
