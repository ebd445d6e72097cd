package toolchain

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"
	"howett.net/plist"
)

// A CatalogEntry describes one installable cross toolchain package as
// published by the toolchain mirror.
type CatalogEntry struct {
	Name    string `plist:"pkgname"`
	Version string `plist:"version"`
	Triple  string `plist:"triple"`
	URL     string `plist:"url"`
}

// Catalog is a wrapper around the functions that interrogate the
// toolchain index.  The index answers which cross toolchains the
// mirror can provide for a given triple; resolution itself never
// consults it so that Resolve stays pure.
type Catalog struct {
	l hclog.Logger

	toolchains map[string]*CatalogEntry
}

// NewCatalog creates an empty Catalog.
func NewCatalog(l hclog.Logger) *Catalog {
	return &Catalog{
		l:          l.Named("catalog"),
		toolchains: make(map[string]*CatalogEntry),
	}
}

// LoadIndex retrieves and parses the toolchain index.  The index is
// a zstd compressed tar containing index.plist.
func (c *Catalog) LoadIndex(path string) error {
	var indexBytes []byte
	var err error

	switch {
	case strings.HasPrefix(path, "http"):
		indexBytes, err = c.fetchHTTP(path)
	case strings.HasPrefix(path, "file"):
		indexBytes, err = c.fetchFile(path)
	default:
		err = errors.New("unknown index scheme")
		c.l.Error("Index scheme must be either file or http(s)")
	}
	if err != nil {
		return err
	}

	return c.parseIndex(indexBytes)
}

// Count is a quick check of how many toolchains this index knows
// about.
func (c *Catalog) Count() int {
	return len(c.toolchains)
}

// ForTriple returns the catalog entries able to produce binaries for
// the named triple.
func (c *Catalog) ForTriple(triple string) []*CatalogEntry {
	out := []*CatalogEntry{}
	for _, tc := range c.toolchains {
		if tc.Triple == triple {
			out = append(out, tc)
		}
	}
	return out
}

// Get returns a single toolchain entry by package name.
func (c *Catalog) Get(name string) (*CatalogEntry, error) {
	tc, ok := c.toolchains[name]
	if !ok {
		return nil, errors.New("no such toolchain")
	}
	return tc, nil
}

func (c *Catalog) fetchHTTP(path string) ([]byte, error) {
	resp, err := http.Get(path)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Catalog) fetchFile(path string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (c *Catalog) parseIndex(indexBytes []byte) error {
	ibr := bytes.NewReader(indexBytes)

	d, err := zstd.NewReader(ibr)
	if err != nil {
		return err
	}
	defer d.Close()

	tarchive := tar.NewReader(d)

	// Iterate through the tar inside the zstd file and pick out the
	// index list.
	for {
		header, err := tarchive.Next()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}

		if header.Name != "index.plist" {
			continue
		}

		buf := &bytes.Buffer{}
		if _, err := buf.ReadFrom(tarchive); err != nil {
			return err
		}
		rs := bytes.NewReader(buf.Bytes())
		dec := plist.NewDecoder(rs)
		if err := dec.Decode(&c.toolchains); err != nil {
			return err
		}
		return nil
	}
}
