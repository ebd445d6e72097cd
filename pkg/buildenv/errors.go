package buildenv

// ErrConflictingLinkage is returned when two directives request
// different link modes for the same library.
type ErrConflictingLinkage struct {
	library string
}

// NewErrConflictingLinkage returns a new error specialized to the
// conflicted library.
func NewErrConflictingLinkage(lib string) ErrConflictingLinkage {
	return ErrConflictingLinkage{lib}
}

func (e ErrConflictingLinkage) Error() string {
	return "conflicting link modes requested for library " + e.library
}
