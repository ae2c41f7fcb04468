package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"BlockScribe/internal/fault"
)

// ageMagic is the first line of every age ciphertext. Sealed bundles
// starting with it are encrypted; everything else is plain zstd.
var ageMagic = []byte("age-encryption.org/v1")

// contentRef derives the opaque reference for sealed bundle bytes.
func contentRef(sealed []byte) string {
	sum := blake3.Sum256(sealed)
	return hex.EncodeToString(sum[:])
}

// seal encodes, compresses, and (with a non-empty key) encrypts a
// bundle for storage.
func seal(b Bundle, encryptionKey string) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle:\n%w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create compressor:\n%w", err)
	}
	compressed := enc.EncodeAll(raw, nil)
	enc.Close()

	if encryptionKey == "" {
		return compressed, nil
	}

	recipient, err := age.NewScryptRecipient(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("derive encryption recipient:\n%w", err)
	}

	var ciphertext bytes.Buffer

	w, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return nil, fmt.Errorf("start encryption:\n%w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return nil, fmt.Errorf("encrypt bundle:\n%w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize encryption:\n%w", err)
	}

	return ciphertext.Bytes(), nil
}

// unseal reverses seal. Classification: an encrypted bundle with no
// key fails with missing_decryption_key; a key the ciphertext rejects
// fails with decryption_failed.
func unseal(sealed []byte, decryptionKey string) (Bundle, error) {
	data := sealed

	if bytes.HasPrefix(sealed, ageMagic) {
		if decryptionKey == "" {
			return Bundle{}, fault.New(fault.MissingDecryptionKey,
				"bundle is encrypted and no decryption key was supplied")
		}

		identity, err := age.NewScryptIdentity(decryptionKey)
		if err != nil {
			return Bundle{}, fault.Wrap(fault.DecryptionFailed, err, "derive decryption identity")
		}

		r, err := age.Decrypt(bytes.NewReader(sealed), identity)
		if err != nil {
			return Bundle{}, fault.Wrap(fault.DecryptionFailed, err, "decrypt bundle")
		}

		// MAC failures surface during the read, not at Decrypt.
		data, err = io.ReadAll(r)
		if err != nil {
			return Bundle{}, fault.Wrap(fault.DecryptionFailed, err, "decrypt bundle")
		}
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Bundle{}, fmt.Errorf("create decompressor:\n%w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return Bundle{}, fmt.Errorf("decompress bundle:\n%w", err)
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle:\n%w", err)
	}

	return b, nil
}
