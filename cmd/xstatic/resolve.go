package main

import (
	"encoding/json"
	"os"

	"github.com/voidhawk/xstatic/pkg/toolchain"
	"github.com/voidhawk/xstatic/pkg/types"
)

type resolveCmd struct {
	Target string `arg:"" help:"Target triple to resolve."`
}

// Run prints the toolchain spec for a target, plus any catalog
// entries able to serve it when an index is configured.
func (c *resolveCmd) Run(g *globals) error {
	target, err := types.ParseTriple(c.Target)
	if err != nil {
		return err
	}
	build, err := buildPlatform(g.cfg)
	if err != nil {
		return err
	}

	resolver := toolchain.NewResolver(g.cfg.PrefixRoot)
	spec, err := resolver.Resolve(build, target)
	if err != nil {
		return err
	}

	out := struct {
		Spec    toolchain.Spec
		Catalog []*toolchain.CatalogEntry `json:",omitempty"`
	}{Spec: spec}

	if g.cfg.ToolchainIndexURL != "" {
		catalog := toolchain.NewCatalog(g.l)
		if err := catalog.LoadIndex(g.cfg.ToolchainIndexURL); err != nil {
			g.l.Warn("Error loading toolchain index", "error", err)
		} else {
			out.Catalog = catalog.ForTriple(target.String())
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
