// file: internal/database/cache.go
// version: 2.0.0
// guid: 4b5c6d7e-8f9a-0b1c-2d3e-4f5a6b7c8d9f

package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// DefaultCacheTTL bounds how long a provider response stays valid.
// Catalog data moves slowly; a week keeps re-scans cheap without
// serving stale matches forever.
const DefaultCacheTTL = 7 * 24 * time.Hour

// ResponseCache stores raw provider response bodies in pebble, keyed
// by provider-scoped lookup keys. It satisfies the provider Cache
// interfaces in fingerprint and enrich.
type ResponseCache struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

type cacheEnvelope struct {
	StoredAt time.Time `json:"stored_at"`
	Body     []byte    `json:"body"`
}

// OpenCache opens the response cache at path with the default TTL.
func OpenCache(path string) (*ResponseCache, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	return &ResponseCache{db: db, ttl: DefaultCacheTTL, now: time.Now}, nil
}

// Close closes the cache.
func (c *ResponseCache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for key if present and unexpired.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	value, closer, err := c.db.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			log.Printf("[WARN] cache: get %s: %v", key, err)
		}
		return nil, false
	}
	defer closer.Close()

	var env cacheEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, false
	}
	if c.now().Sub(env.StoredAt) > c.ttl {
		// Expired entries are deleted lazily on read.
		if err := c.db.Delete([]byte(key), pebble.NoSync); err != nil {
			log.Printf("[WARN] cache: expire %s: %v", key, err)
		}
		return nil, false
	}
	return env.Body, true
}

// Put stores body under key.
func (c *ResponseCache) Put(key string, body []byte) error {
	env := cacheEnvelope{StoredAt: c.now(), Body: body}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.db.Set([]byte(key), value, pebble.NoSync)
}
