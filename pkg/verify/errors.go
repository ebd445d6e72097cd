package verify

// ErrArchitectureMismatch is returned when an artifact's embedded
// architecture disagrees with the requested triple.  Fatal; this is a
// correctness bug in toolchain selection, not a transient condition.
type ErrArchitectureMismatch struct {
	path string
	want string
	got  string
}

// NewErrArchitectureMismatch returns a new error naming the artifact
// and both architectures.
func NewErrArchitectureMismatch(path, want, got string) ErrArchitectureMismatch {
	return ErrArchitectureMismatch{path, want, got}
}

func (e ErrArchitectureMismatch) Error() string {
	return e.path + " was built for " + e.got + ", requested " + e.want
}

// ErrDynamicLinkage is returned when a supposedly static artifact
// still carries runtime linkage.
type ErrDynamicLinkage struct {
	path   string
	reason string
}

// NewErrDynamicLinkage returns a new error naming the artifact and
// the linkage evidence found in it.
func NewErrDynamicLinkage(path, reason string) ErrDynamicLinkage {
	return ErrDynamicLinkage{path, reason}
}

func (e ErrDynamicLinkage) Error() string {
	return e.path + " is not statically linked: " + e.reason
}
