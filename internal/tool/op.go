// Package tool exposes the five ledger operations behind a closed
// dispatch: every operation is an enum variant with one handler, and
// every outcome is a uniform success/error envelope.
package tool

import (
	"fmt"

	"BlockScribe/internal/fault"
)

// Op identifies one of the ledger operations.
type Op int

const (
	// OpSubmit submits a new block with optional content and files.
	OpSubmit Op = iota

	// OpGetBlock fetches a block record by ID.
	OpGetBlock

	// OpGetLatest fetches the latest block hash on the ledger.
	OpGetLatest

	// OpAudit recomputes a stored bundle's digest against the chain.
	OpAudit

	// OpVerify asks the ledger whether a digest matches a block.
	OpVerify
)

// String returns the operation's wire name.
func (op Op) String() string {
	switch op {
	case OpSubmit:
		return "submit"
	case OpGetBlock:
		return "get_block"
	case OpGetLatest:
		return "get_latest"
	case OpAudit:
		return "audit"
	case OpVerify:
		return "verify"
	default:
		return fmt.Sprintf("unknown(%d)", int(op))
	}
}

// ParseOp parses a wire name into an operation.
func ParseOp(name string) (Op, error) {
	switch name {
	case "submit":
		return OpSubmit, nil
	case "get_block":
		return OpGetBlock, nil
	case "get_latest":
		return OpGetLatest, nil
	case "audit":
		return OpAudit, nil
	case "verify":
		return OpVerify, nil
	default:
		return 0, fault.New(fault.InvalidFormat, "unknown operation %q", name)
	}
}
