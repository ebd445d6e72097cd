package buildenv

// LinkMode selects how a native library is linked.
type LinkMode int

const (
	// Static links the library into the binary.
	Static LinkMode = iota

	// Dynamic leaves the library as a runtime dependency.
	Dynamic
)

func (m LinkMode) String() string {
	if m == Static {
		return "static"
	}
	return "dynamic"
}

// A Directive names one native library and how it must be linked.
// SearchPath, when set, overrides where the library is looked up.
type Directive struct {
	Library    string
	Mode       LinkMode
	SearchPath string
}

// A Plan is the full set of linkage directives for one build.
type Plan []Directive

// An Environment is the composed key value mapping consumed verbatim
// by the executor.  It replaces a flat process-global export list
// with an explicit value passed stage to stage.
type Environment map[string]string
