// Package store provides content-addressed bundle storage. Bundles
// are sealed before storage: JSON-encoded, zstd-compressed, and
// optionally age-encrypted with a passphrase. The content reference
// is the blake3 hash of the sealed bytes, so the store never needs to
// see plaintext and references are stable for identical sealed data.
package store

import "BlockScribe/internal/bundle"

// Bundle is the content payload stored for one block: the block's
// inline content plus its materialized files.
type Bundle struct {
	Block string            `json:"block"`           // Block is the inline block content
	Files map[string]string `json:"files,omitempty"` // Files maps file name to literal body
}

// FromResolved builds a bundle from inline content and materialized
// files.
func FromResolved(content string, files []bundle.ResolvedFile) Bundle {
	b := Bundle{Block: content}

	if len(files) > 0 {
		b.Files = make(map[string]string, len(files))
		for _, f := range files {
			b.Files[f.Name] = f.Content
		}
	}

	return b
}

// Store is the content store capability consumed by the scribe.
// Upload returns an opaque content reference. Download fails with
// missing_decryption_key when the bundle is encrypted and no key is
// given, and with decryption_failed when the given key does not open
// it.
type Store interface {
	Upload(b Bundle, encryptionKey string) (string, error)
	Download(ref, decryptionKey string) (Bundle, error)
}
