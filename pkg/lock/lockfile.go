package lock

import (
	"encoding/json"
	"os"
)

// Load reads and validates a lockfile.  The file is treated as
// read-only input owned by the project; the orchestrator never
// rewrites it.
func Load(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, err
	}
	defer f.Close()

	var g Graph
	dec := json.NewDecoder(f)
	if err := dec.Decode(&g); err != nil {
		return Graph{}, NewErrMalformedLockfile(path, err.Error())
	}

	seen := make(map[string]struct{}, len(g.Entries))
	for _, e := range g.Entries {
		switch {
		case e.Name == "":
			return Graph{}, NewErrMalformedLockfile(path, "entry with empty name")
		case e.Source == "":
			return Graph{}, NewErrMalformedLockfile(path, "entry "+e.Name+" has no source")
		case e.Integrity == "":
			return Graph{}, NewErrMalformedLockfile(path, "entry "+e.Name+" has no integrity hash")
		}
		if _, dup := seen[e.Name]; dup {
			return Graph{}, NewErrMalformedLockfile(path, "duplicate entry "+e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return g, nil
}
