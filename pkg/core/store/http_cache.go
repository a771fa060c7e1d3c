package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/edgar"
)

// HybridHTTPCache implements edgar.Cache over Postgres with a file-backed
// fallback: the database is primary so cache entries are shared between
// machines, and the local file tree still answers when the pool is slow or
// absent. Writes go to both; either side failing alone is non-fatal.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS http_cache (
//	  cache_key TEXT PRIMARY KEY,
//	  body BYTEA NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type HybridHTTPCache struct {
	pool  *pgxpool.Pool
	files *edgar.FileCache
	log   zerolog.Logger
}

// NewHybridHTTPCache builds the hybrid cache. pool may be nil, in which case
// the file backend serves alone; files may be nil when only the DB should be
// used.
func NewHybridHTTPCache(pool *pgxpool.Pool, files *edgar.FileCache) *HybridHTTPCache {
	return &HybridHTTPCache{
		pool:  pool,
		files: files,
		log:   log.With().Str("component", "http_cache").Logger(),
	}
}

// Get checks the database first, then the file tree. A DB hit missing from
// the file tree is backfilled so later offline runs still hit.
func (c *HybridHTTPCache) Get(key string) ([]byte, bool) {
	if c.pool != nil {
		var body []byte
		err := c.pool.QueryRow(context.Background(),
			`SELECT body FROM http_cache WHERE cache_key = $1`, key).Scan(&body)
		if err == nil {
			if c.files != nil {
				if _, ok := c.files.Get(key); !ok {
					c.files.Set(key, body)
				}
			}
			return body, true
		}
	}
	if c.files != nil {
		return c.files.Get(key)
	}
	return nil, false
}

// Set writes to both backends. The entry survives as long as either write
// lands; only a double failure is reported.
func (c *HybridHTTPCache) Set(key string, value []byte) error {
	var dbErr, fileErr error
	if c.pool != nil {
		_, dbErr = c.pool.Exec(context.Background(), `
			INSERT INTO http_cache (cache_key, body, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (cache_key) DO UPDATE SET
				body = EXCLUDED.body,
				updated_at = NOW();
		`, key, value)
		if dbErr != nil {
			c.log.Warn().Err(dbErr).Msg("db cache write failed")
		}
	}
	if c.files != nil {
		fileErr = c.files.Set(key, value)
	}
	if dbErr != nil && (c.files == nil || fileErr != nil) {
		return dbErr
	}
	return fileErr
}

// Close releases the file backend. The pool is shared and closed by the
// owner of the store package.
func (c *HybridHTTPCache) Close() error {
	if c.files != nil {
		return c.files.Close()
	}
	return nil
}
