package fetch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/schollz/progressbar/v3"
	"lukechampine.com/blake3"

	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/lock"
)

// New returns a fetcher that materializes dependencies under the
// manager's deps-index region.
func New(cm *cache.Manager, opts ...Option) *Fetcher {
	f := Fetcher{
		l:       hclog.NewNullLogger(),
		cm:      cm,
		client:  &http.Client{Timeout: 300 * time.Second},
		retries: 3,
		backoff: time.Second,
	}
	for _, o := range opts {
		o(&f)
	}
	return &f
}

// Fetch materializes the full locked graph.  The deps-index region is
// held in Locked mode for the duration so that concurrent target
// builds from the same checkout serialize instead of corrupting the
// shared index.  Refetching an already satisfied entry is a cache
// hit and performs no network call.
func (f *Fetcher) Fetch(ctx context.Context, g lock.Graph) (Resolved, error) {
	region, err := f.cm.Region(cache.RegionDepsIndex, cache.Locked)
	if err != nil {
		return Resolved{}, err
	}
	handle, err := f.cm.Acquire(ctx, region)
	if err != nil {
		return Resolved{}, err
	}
	defer handle.Release()

	store := filepath.Join(region.Path(), "store")
	if err := os.MkdirAll(store, 0o755); err != nil {
		return Resolved{}, err
	}

	res := Resolved{
		StorePath: store,
		Paths:     make(map[string]string, len(g.Entries)),
	}
	for _, e := range g.Entries {
		dest := filepath.Join(store, e.Name+"-"+e.Version)
		ok, err := f.satisfied(dest, e.Integrity)
		if err != nil {
			return Resolved{}, err
		}
		if ok {
			f.l.Debug("Cache hit", "dep", e.Name, "version", e.Version)
			res.Paths[e.Name] = dest
			continue
		}
		if err := f.fetchOne(ctx, e, dest); err != nil {
			return Resolved{}, err
		}
		res.Paths[e.Name] = dest
	}
	return res, nil
}

// satisfied reports whether dest already holds content matching the
// integrity hash.
func (f *Fetcher) satisfied(dest, integrity string) (bool, error) {
	if _, err := os.Stat(dest); err != nil {
		return false, nil
	}
	sum, err := hashFile(dest)
	if err != nil {
		return false, err
	}
	return sum == integrity, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, e lock.Entry, dest string) error {
	tmp := dest + ".part"
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			f.l.Warn("Retrying fetch", "dep", e.Name, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.backoff << (attempt - 1)):
			}
		}

		retryable, err := f.download(ctx, e, tmp)
		if err == nil {
			break
		}
		lastErr = err
		if !retryable {
			os.Remove(tmp)
			return err
		}
		if attempt == f.retries {
			os.Remove(tmp)
			return NewErrNetwork(e.Source, attempt+1, lastErr)
		}
	}

	sum, err := hashFile(tmp)
	if err != nil {
		return err
	}
	if sum != e.Integrity {
		// A corrupt dependency is a build breaking condition, not a
		// transient one.  Remove the bad file and fail.
		os.Remove(tmp)
		return NewErrIntegrity(e.Name, e.Integrity, sum)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return err
	}

	if isArchive(e.Source) {
		if err := extract(dest, e.Source, dest+".d"); err != nil {
			return err
		}
	}

	f.record(e, dest)
	f.l.Info("Fetched dependency", "dep", e.Name, "version", e.Version)
	return nil
}

// download performs a single GET attempt.  The bool return reports
// whether a failure is worth retrying: connection errors and server
// side failures are, client errors are not.
func (f *Fetcher) download(ctx context.Context, e lock.Entry, tmp string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Source, nil)
	if err != nil {
		return false, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return true, errStatus(resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return false, NewErrNetwork(e.Source, 1, errStatus(resp.StatusCode))
	}

	out, err := os.Create(tmp)
	if err != nil {
		return false, err
	}
	defer out.Close()

	var w io.Writer = out
	if f.progress {
		bar := progressbar.DefaultBytes(resp.ContentLength, e.Name)
		w = io.MultiWriter(out, bar)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return true, err
	}
	return false, nil
}

func (f *Fetcher) record(e lock.Entry, dest string) {
	if f.idx == nil {
		return
	}
	fi, err := os.Stat(dest)
	if err != nil {
		return
	}
	rec := indexRecord{
		Name:      e.Name,
		Version:   e.Version,
		Source:    e.Source,
		Integrity: e.Integrity,
		Size:      fi.Size(),
		FetchedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := f.idx.Put([]byte("dep/"+e.Name), b); err != nil {
		f.l.Warn("Error persisting fetch record", "dep", e.Name, "error", err)
	}
}

func hashFile(path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, fd); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type errStatus int

func (e errStatus) Error() string {
	return http.StatusText(int(e))
}
