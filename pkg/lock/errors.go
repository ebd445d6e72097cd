package lock

// ErrMalformedLockfile is returned when a lockfile cannot be decoded
// or fails validation.
type ErrMalformedLockfile struct {
	path   string
	reason string
}

// NewErrMalformedLockfile returns a new error naming the file and the
// first problem found in it.
func NewErrMalformedLockfile(path, reason string) ErrMalformedLockfile {
	return ErrMalformedLockfile{path, reason}
}

func (e ErrMalformedLockfile) Error() string {
	return "lockfile " + e.path + ": " + e.reason
}
