// Package stage relocates verified artifacts into their final output
// location.
package stage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/types"
)

// A Stager moves verified artifacts into the output directory.
type Stager struct {
	l hclog.Logger
}

// New returns a Stager.
func New(l hclog.Logger) *Stager {
	return &Stager{l: l.Named("stage")}
}

// Stage moves the artifact into outputDir under the requested package
// name, whatever its build-time name was.  The final placement is a
// rename, so concurrent readers of the output directory never observe
// a partially written file.
func (s *Stager) Stage(a types.Artifact, outputDir, pkgName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	final := filepath.Join(outputDir, pkgName)

	if err := os.Rename(a.Path, final); err == nil {
		s.l.Info("Staged artifact", "path", final, "triple", a.Triple)
		return final, nil
	}

	// Rename across filesystems fails; copy into a temp file beside
	// the destination and rename that instead, keeping the final
	// placement atomic.
	tmp, err := os.CreateTemp(outputDir, "."+pkgName+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	src, err := os.Open(a.Path)
	if err != nil {
		tmp.Close()
		return "", err
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", err
	}
	os.Remove(a.Path)

	s.l.Info("Staged artifact", "path", final, "triple", a.Triple)
	return final, nil
}
