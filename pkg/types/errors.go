package types

// ErrInvalidTriple is returned when a triple string cannot be parsed
// into its component fields.
type ErrInvalidTriple struct {
	raw string
}

// NewErrInvalidTriple returns a new error specialized to the string
// that failed to parse.
func NewErrInvalidTriple(s string) ErrInvalidTriple {
	return ErrInvalidTriple{s}
}

func (e ErrInvalidTriple) Error() string {
	return "not a valid target triple: " + e.raw
}
