package fetch

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/storage"
)

// Option configures a Fetcher during construction.
type Option func(*Fetcher)

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(f *Fetcher) {
		f.l = l.Named("fetch")
	}
}

// WithIndex enables persistence of fetch metadata to a durable
// datastore.  Without it the store directory itself is the only
// record.
func WithIndex(s storage.Storage) Option {
	return func(f *Fetcher) {
		f.idx = s
	}
}

// WithHTTPClient overrides the http client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithRetries sets the retry budget for transient network failures.
func WithRetries(n int, backoff time.Duration) Option {
	return func(f *Fetcher) {
		f.retries = n
		f.backoff = backoff
	}
}

// WithProgress draws a progress bar per download on stderr.
func WithProgress(enable bool) Option {
	return func(f *Fetcher) {
		f.progress = enable
	}
}
