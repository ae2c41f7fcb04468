// Package chain implements chain continuity for block submissions:
// the in-process cache of the last accepted content hash, the parent
// resolver, and the submission orchestrator that composes validation,
// file materialization, continuity resolution, bundle upload, and
// ledger submission.
package chain

import (
	"sync"

	"BlockScribe/internal/digest"
)

// Cache holds the content hash of the block most recently accepted by
// this process. It is created empty, overwritten on every accepted
// submission, and never persisted. Safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	latest digest.Digest
	set    bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Latest returns the cached digest, if any.
func (c *Cache) Latest() (digest.Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.latest, c.set
}

// Store records a digest as the most recently accepted content hash.
// Callers must only store hashes the ledger has confirmed.
func (c *Cache) Store(d digest.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest = d
	c.set = true
}
