package digest

import (
	"strings"

	"BlockScribe/internal/fault"
)

// addressHexLen is the number of hex characters in a 20-byte address.
const addressHexLen = 40

// ValidateBlockID checks the advisory {origin}_{workflow} block ID
// convention: non-empty, with at least two non-empty underscore
// separated segments. Uniqueness is enforced by the ledger, not here.
func ValidateBlockID(id string) error {
	if id == "" {
		return fault.New(fault.InvalidFormat, "block ID must not be empty")
	}

	var segments int
	for _, part := range strings.Split(id, "_") {
		if part != "" {
			segments++
		}
	}

	if segments < 2 {
		return fault.New(fault.InvalidFormat,
			"block ID %q must have the form {origin}_{workflow}", short(id))
	}

	return nil
}

// ValidateAddress checks that value is a 20-byte hex address with a
// "0x" prefix. Used for startup configuration only.
func ValidateAddress(value, field string) error {
	if len(value) != addressHexLen+2 || value[0] != '0' || (value[1] != 'x' && value[1] != 'X') {
		return fault.New(fault.InvalidFormat,
			"%s must be 0x followed by %d hex characters, got %q", field, addressHexLen, short(value))
	}

	for _, c := range value[2:] {
		if !isHex(c) {
			return fault.New(fault.InvalidFormat,
				"%s contains non-hex characters: %q", field, value)
		}
	}

	return nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
