package chain

import (
	"BlockScribe/internal/digest"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/logger"
)

// Resolver determines the parent digest for a new submission:
// explicit caller intent first, then the cache, then the ledger's
// latest hash, then genesis. Two resolutions racing on an empty
// cache may both query the ledger; the query is idempotent, so no
// serialization is needed here.
type Resolver struct {
	cache  *Cache
	ledger ledger.Client
}

// NewResolver creates a resolver over the given cache and ledger.
func NewResolver(cache *Cache, lc ledger.Client) *Resolver {
	return &Resolver{cache: cache, ledger: lc}
}

// Parent resolves the parent digest. A non-nil supplied digest is
// returned unchanged; caching never interferes with explicit intent.
func (r *Resolver) Parent(supplied *digest.Digest) (digest.Digest, error) {
	if supplied != nil {
		return *supplied, nil
	}

	if d, ok := r.cache.Latest(); ok {
		return d, nil
	}

	d, err := r.ledger.LatestBlockHash()
	if err != nil {
		return digest.Digest{}, err
	}

	if !d.IsGenesis() {
		r.cache.Store(d)
		logger.Debug("continuity cache primed from ledger", "hash", d)
		return d, nil
	}

	return digest.Genesis, nil
}
