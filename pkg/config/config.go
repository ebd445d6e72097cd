package config

import (
	"encoding/json"
	"os"

	"github.com/voidhawk/xstatic/pkg/buildenv"
)

// knownFeatures is the full set of build-time toggles.  The feature
// surface is enumerated, not free-form.
var knownFeatures = map[string]struct{}{
	"progress":      {},
	"persist-index": {},
}

// NewConfig returns a config object with default structures
// initialized.  The config can be loaded from other sources to
// override the defaults.
func NewConfig() *Config {
	return &Config{
		Targets:          []string{"x86_64-unknown-linux-gnu"},
		Profile:          "release",
		OutputDir:        "dist",
		Lockfile:         "deps.lock.json",
		CapacityProvider: "local",
		Features:         map[string]bool{},
		BuildSlots: map[string]int{
			"x86_64-unknown-linux-gnu": 1,
		},
	}
}

// LoadFromFile does as the name suggests, and loads the config from a
// file.
func (c *Config) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	return dec.Decode(c)
}

// Validate checks the enumerated surfaces before any cache or network
// resource is touched.
func (c *Config) Validate() error {
	for name := range c.Features {
		if _, ok := knownFeatures[name]; !ok {
			return NewErrUnknownFeature(name)
		}
	}
	for _, d := range c.Linkage {
		if d.Mode != "static" && d.Mode != "dynamic" {
			return NewErrUnknownLinkMode(d.Library, d.Mode)
		}
	}
	return nil
}

// Plan converts the configured linkage directives into the composable
// form.
func (c *Config) Plan() buildenv.Plan {
	plan := make(buildenv.Plan, 0, len(c.Linkage))
	for _, d := range c.Linkage {
		mode := buildenv.Dynamic
		if d.Mode == "static" {
			mode = buildenv.Static
		}
		plan = append(plan, buildenv.Directive{
			Library:    d.Library,
			Mode:       mode,
			SearchPath: d.SearchPath,
		})
	}
	return plan
}
