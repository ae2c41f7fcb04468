// Package digest defines the 32-byte content digest used throughout
// the scribe: parsing, canonical formatting, the reserved genesis
// value, and content hashing.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"BlockScribe/internal/fault"
)

// hexLen is the number of hex characters in a canonical digest.
const hexLen = 64

// Digest is a 32-byte content hash. The canonical textual form is
// "0x" followed by 64 lowercase hex characters.
type Digest [32]byte

// Genesis is the reserved all-zero digest denoting "no parent".
var Genesis Digest

// Parse decodes a canonical digest string. Hex characters may be
// upper or lower case; the "0x" prefix is required.
func Parse(s string) (Digest, error) {
	return parseField(s, "digest")
}

// ParseField decodes a canonical digest string, naming the field in
// the error on failure.
func ParseField(s, field string) (Digest, error) {
	return parseField(s, field)
}

// ParseLoose decodes a digest with or without the "0x" prefix. Used
// only by hash verification, which normalizes caller input.
func ParseLoose(s string) (Digest, error) {
	if len(s) == hexLen {
		s = "0x" + s
	}
	return parseField(s, "digest")
}

func parseField(s, field string) (Digest, error) {
	var d Digest

	if len(s) != hexLen+2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return d, fault.New(fault.InvalidFormat,
			"%s must be 0x followed by %d hex characters, got %q", field, hexLen, short(s))
	}

	if _, err := hex.Decode(d[:], []byte(s[2:])); err != nil {
		return d, fault.New(fault.InvalidFormat,
			"%s contains non-hex characters: %q", field, s)
	}

	return d, nil
}

// Validate checks that value is a well-formed digest string.
func Validate(value, field string) error {
	_, err := parseField(value, field)
	return err
}

// String returns the canonical "0x"+64-lowercase-hex form.
func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

// IsGenesis reports whether the digest is the reserved all-zero value.
func (d Digest) IsGenesis() bool {
	return d == Genesis
}

// MarshalText encodes the digest in canonical form.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a canonical digest string.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// FromContent computes the digest of a block content payload.
func FromContent(content []byte) Digest {
	return sha256.Sum256(content)
}

// short is used in error messages to avoid dumping long inputs.
func short(s string) string {
	if len(s) <= 80 {
		return s
	}
	return fmt.Sprintf("%s... (%d chars)", s[:77], len(s))
}
