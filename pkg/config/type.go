package config

// A LinkageDirective is the on-disk form of one static link plan
// entry.
type LinkageDirective struct {
	Library    string
	Mode       string
	SearchPath string
}

// Config represents the complete application configuration that
// xstatic supports.
type Config struct {
	// BuildPlatform is the triple the orchestrator itself runs on.
	BuildPlatform string

	// Targets are the triples to build for.
	Targets []string

	Package   string
	Profile   string
	OutputDir string

	// ProjectDir is the opaque source tree; Lockfile enumerates its
	// locked dependencies.  ProjectURL, when set, lets the local
	// capacity provider bootstrap the checkout itself.
	ProjectDir string
	Lockfile   string
	ProjectURL string

	CacheRoot         string
	PrefixRoot        string
	ToolchainIndexURL string

	Linkage []LinkageDirective

	// Features are enumerated build-time toggles; unknown names are
	// a configuration error.
	Features map[string]bool

	CapacityProvider string
	BuildSlots       map[string]int
}
