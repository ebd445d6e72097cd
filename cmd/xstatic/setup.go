package main

import (
	"path/filepath"

	"github.com/voidhawk/xstatic/pkg/cache"
	"github.com/voidhawk/xstatic/pkg/fetch"
	"github.com/voidhawk/xstatic/pkg/storage"
	_ "github.com/voidhawk/xstatic/pkg/storage/bc"
)

// setupCache builds the shared cache manager from config.
func setupCache(g *globals) (*cache.Manager, error) {
	opts := []cache.Option{cache.WithLogger(g.l)}
	if g.cfg.CacheRoot != "" {
		opts = append(opts, cache.WithRoot(g.cfg.CacheRoot))
	}
	return cache.New(opts...)
}

// setupStore opens the durable state store under the cache root when
// the persist-index feature is enabled.  The same store backs the
// fetch index and the pipeline status atoms.
func setupStore(g *globals, cm *cache.Manager) (storage.Storage, error) {
	if !g.cfg.Features["persist-index"] {
		return nil, nil
	}
	storage.SetLogger(g.l)
	storage.SetBasePath(filepath.Join(cm.Root(), "index"))
	storage.DoCallbacks()
	return storage.Initialize("bitcask")
}

// setupFetcher builds the dependency fetcher, attaching the durable
// fetch index when a store is configured.
func setupFetcher(g *globals, cm *cache.Manager, store storage.Storage) *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithLogger(g.l),
		fetch.WithProgress(g.cfg.Features["progress"]),
	}
	if store != nil {
		opts = append(opts, fetch.WithIndex(store))
	}
	return fetch.New(cm, opts...)
}
