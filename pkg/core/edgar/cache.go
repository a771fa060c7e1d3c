// Package edgar implements the SEC EDGAR ingestion core: the rate-limited
// cached HTTP client, the ticker-to-CIK registry, and the point-in-time
// filings index.
package edgar

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Cache is the content-addressed response store shared by snapshot builds.
// Keys are hex digests (see utils.RequestCacheKey); values are raw response
// bodies. Implementations must be safe for concurrent use. The file-backed
// implementation lives here; a Postgres-primary hybrid lives in pkg/core/store.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Close() error
}

const bytesPerGB = 1 << 30

// FileCache stores one file per key under root/<key[:2]>/<key>, with a size
// cap enforced by evicting the least-recently-touched entries.
type FileCache struct {
	root     string
	maxBytes int64

	mu   sync.Mutex
	size int64
	log  zerolog.Logger
}

// NewFileCache opens (or creates) a cache rooted at dir with the given size
// cap in gigabytes. The on-disk layout is opaque to callers.
func NewFileCache(dir string, sizeGB float64) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	c := &FileCache{
		root:     dir,
		maxBytes: int64(sizeGB * bytesPerGB),
		log:      log.With().Str("component", "cache").Logger(),
	}
	c.size = c.scanSize()
	return c, nil
}

func (c *FileCache) path(key string) string {
	shard := "00"
	if len(key) >= 2 {
		shard = key[:2]
	}
	return filepath.Join(c.root, shard, key)
}

// Get returns the cached body for key. A hit refreshes the entry's mtime so
// eviction stays least-recently-used.
func (c *FileCache) Get(key string) ([]byte, bool) {
	p := c.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	now := time.Now()
	os.Chtimes(p, now, now)
	return data, true
}

// Set writes the body for key and evicts old entries if the cap is exceeded.
func (c *FileCache) Set(key string, value []byte) error {
	p := c.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create cache shard: %w", err)
	}
	if err := os.WriteFile(p, value, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.size += int64(len(value))
	if c.maxBytes > 0 && c.size > c.maxBytes {
		c.evict()
	}
	return nil
}

// Close is a no-op for the file backend; it exists so callers can release
// pooled backends through the same interface.
func (c *FileCache) Close() error {
	return nil
}

// scanSize walks the tree once at open to seed the running size total.
func (c *FileCache) scanSize() int64 {
	var total int64
	filepath.Walk(c.root, func(_ string, info os.FileInfo, err error) error {
		if err == nil && info != nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

type cacheEntry struct {
	path  string
	size  int64
	mtime time.Time
}

// evict removes oldest-touched entries until the cache is back under its
// cap. Caller holds c.mu.
func (c *FileCache) evict() {
	var entries []cacheEntry
	filepath.Walk(c.root, func(p string, info os.FileInfo, err error) error {
		if err == nil && info != nil && !info.IsDir() {
			entries = append(entries, cacheEntry{path: p, size: info.Size(), mtime: info.ModTime()})
		}
		return nil
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].mtime.Before(entries[j].mtime) })

	var actual int64
	for _, e := range entries {
		actual += e.size
	}
	c.size = actual

	for _, e := range entries {
		if c.size <= c.maxBytes {
			break
		}
		if err := os.Remove(e.path); err != nil {
			c.log.Debug().Err(err).Str("path", e.path).Msg("cache eviction skipped entry")
			continue
		}
		c.size -= e.size
	}
}
