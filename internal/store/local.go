package store

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"BlockScribe/internal/fault"
	"BlockScribe/internal/logger"
)

// bundlePrefix namespaces bundle blobs in the key space.
const bundlePrefix = "bundle/"

// Local is a pebble-backed content store for development and tests.
// Sealed bundles are stored under their blake3 reference; uploads are
// synced before the reference is returned, so a returned ref is
// always durable.
type Local struct {
	db *pebble.DB
}

// OpenLocal opens (or creates) a local store at the given path.
func OpenLocal(path string) (*Local, error) {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(16 << 20), // 16 MB cache
		MemTableSize: 8 << 20,                   // 8 MB memtable
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open local store at %s:\n%w", path, err)
	}

	return &Local{db: db}, nil
}

// Close closes the underlying database.
func (l *Local) Close() error {
	return l.db.Close()
}

// Upload seals and stores a bundle, returning its content reference.
// Re-uploading identical sealed bytes is idempotent.
func (l *Local) Upload(b Bundle, encryptionKey string) (string, error) {
	sealed, err := seal(b, encryptionKey)
	if err != nil {
		return "", err
	}

	ref := contentRef(sealed)

	if err := l.db.Set([]byte(bundlePrefix+ref), sealed, pebble.Sync); err != nil {
		return "", fault.Wrap(fault.External, err, "store bundle %s", ref)
	}

	logger.Debug("bundle stored", "ref", ref, "bytes", len(sealed), "encrypted", encryptionKey != "")

	return ref, nil
}

// Download retrieves and unseals a bundle by reference.
func (l *Local) Download(ref, decryptionKey string) (Bundle, error) {
	value, closer, err := l.db.Get([]byte(bundlePrefix + ref))
	if err == pebble.ErrNotFound {
		return Bundle{}, fault.New(fault.NotFound, "bundle %s not found", ref)
	}
	if err != nil {
		return Bundle{}, fault.Wrap(fault.External, err, "load bundle %s", ref)
	}

	// Copy the value since it's invalid after closer.Close()
	sealed := make([]byte, len(value))
	copy(sealed, value)
	closer.Close()

	return unseal(sealed, decryptionKey)
}
