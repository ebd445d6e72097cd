package config

// ErrUnknownFeature is returned when the config names a feature
// toggle outside the enumerated set.
type ErrUnknownFeature struct {
	name string
}

// NewErrUnknownFeature returns a new error specialized to the
// unrecognized feature.
func NewErrUnknownFeature(name string) ErrUnknownFeature {
	return ErrUnknownFeature{name}
}

func (e ErrUnknownFeature) Error() string {
	return "unknown feature toggle: " + e.name
}

// ErrMissingField is returned when a required configuration value is
// absent from both the config file and the command line.
type ErrMissingField struct {
	field string
}

// NewErrMissingField returns a new error naming the absent field.
func NewErrMissingField(field string) ErrMissingField {
	return ErrMissingField{field}
}

func (e ErrMissingField) Error() string {
	return "required configuration value " + e.field + " is not set"
}

// ErrUnknownLinkMode is returned when a linkage directive carries a
// mode other than static or dynamic.
type ErrUnknownLinkMode struct {
	library string
	mode    string
}

// NewErrUnknownLinkMode returns a new error naming the directive and
// its bad mode.
func NewErrUnknownLinkMode(library, mode string) ErrUnknownLinkMode {
	return ErrUnknownLinkMode{library, mode}
}

func (e ErrUnknownLinkMode) Error() string {
	return "link mode for " + e.library + " must be static or dynamic, not " + e.mode
}
