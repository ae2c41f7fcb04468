// Package audit recomputes stored bundle digests and compares them to
// the on-chain record. A pure read side: it never mutates ledger,
// store, or cache state.
package audit

import (
	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
	"BlockScribe/internal/ledger"
	"BlockScribe/internal/logger"
	"BlockScribe/internal/store"
)

// Verdict is the tri-state outcome of an audit.
type Verdict string

const (
	// VerdictTrue means the recomputed digest matches the chain.
	VerdictTrue Verdict = "true"

	// VerdictFalse means the audit failed or the digests differ.
	VerdictFalse Verdict = "false"

	// VerdictUnknown means there was nothing to audit: the block has
	// no content reference.
	VerdictUnknown Verdict = "unknown"
)

// Result is the outcome of auditing one block.
type Result struct {
	BlockID      string        `json:"blockId"`
	Verified     Verdict       `json:"verified"`
	OnChainHash  digest.Digest `json:"onChainHash"`
	ComputedHash string        `json:"computedHash,omitempty"`
	ErrorClass   fault.Class   `json:"errorClass,omitempty"`
	Note         string        `json:"note,omitempty"`
}

// Engine audits blocks against their stored bundles.
type Engine struct {
	ledger ledger.Client
	store  store.Store
}

// NewEngine creates an audit engine over the given collaborators.
func NewEngine(lc ledger.Client, cs store.Store) *Engine {
	return &Engine{ledger: lc, store: cs}
}

// Audit determines whether the stored content of a block still
// matches its on-chain digest. Four terminal outcomes:
//
//   - block absent on the ledger: verified=false, not_found
//   - block without a content reference: verified=unknown
//   - bundle retrieved: verified compares recomputed and on-chain digests
//   - download or decrypt failure: verified=false, classified
func (e *Engine) Audit(blockID, decryptionKey string) (*Result, error) {
	rec, err := e.ledger.GetBlock(blockID)
	if err != nil {
		return nil, err
	}

	if rec == nil {
		return &Result{
			BlockID:    blockID,
			Verified:   VerdictFalse,
			ErrorClass: fault.NotFound,
			Note:       "block not found on ledger",
		}, nil
	}

	if rec.ContentRef == "" {
		return &Result{
			BlockID:     blockID,
			Verified:    VerdictUnknown,
			OnChainHash: rec.ContentHash,
			Note:        "block has no content reference; integrity cannot be computed",
		}, nil
	}

	b, err := e.store.Download(rec.ContentRef, decryptionKey)
	if err != nil {
		return &Result{
			BlockID:     blockID,
			Verified:    VerdictFalse,
			OnChainHash: rec.ContentHash,
			ErrorClass:  downloadClass(err),
			Note:        err.Error(),
		}, nil
	}

	// Recompute over the block payload exactly as the submitter did.
	computed := digest.FromContent([]byte(b.Block))

	verdict := VerdictFalse
	if computed == rec.ContentHash {
		verdict = VerdictTrue
	} else {
		logger.Warn("audit mismatch",
			"block", blockID,
			"onChain", rec.ContentHash,
			"computed", computed,
		)
	}

	return &Result{
		BlockID:      blockID,
		Verified:     verdict,
		OnChainHash:  rec.ContentHash,
		ComputedHash: computed.String(),
	}, nil
}

// downloadClass maps a download error to the audit taxonomy: the two
// decryption classes pass through, everything else is unknown.
func downloadClass(err error) fault.Class {
	switch fault.ClassOf(err) {
	case fault.MissingDecryptionKey:
		return fault.MissingDecryptionKey
	case fault.DecryptionFailed:
		return fault.DecryptionFailed
	default:
		return fault.Unknown
	}
}
