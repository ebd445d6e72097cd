package fetch

import (
	"strconv"
)

// ErrNetwork is returned when an entry cannot be retrieved from its
// source.  It may be retried a bounded number of times before being
// surfaced as fatal.
type ErrNetwork struct {
	source   string
	attempts int
	cause    error
}

// NewErrNetwork returns a new error covering all attempts against the
// given source.
func NewErrNetwork(source string, attempts int, cause error) ErrNetwork {
	return ErrNetwork{source, attempts, cause}
}

func (e ErrNetwork) Error() string {
	return "fetch of " + e.source + " failed after " + strconv.Itoa(e.attempts) + " attempts: " + e.cause.Error()
}

func (e ErrNetwork) Unwrap() error {
	return e.cause
}

// ErrIntegrity is returned when a fetched artifact does not match its
// locked hash.  This is fatal and never retried.
type ErrIntegrity struct {
	name string
	want string
	got  string
}

// NewErrIntegrity returns a new error naming the entry and both
// hashes.
func NewErrIntegrity(name, want, got string) ErrIntegrity {
	return ErrIntegrity{name, want, got}
}

func (e ErrIntegrity) Error() string {
	return "integrity mismatch for " + e.name + ": want " + e.want + ", got " + e.got
}
