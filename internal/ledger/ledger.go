// Package ledger defines the client capability for the external
// distributed ledger: submit a block record, query records, and
// verify digests. The ledger owns the records; this process only
// reads them back.
package ledger

import "BlockScribe/internal/digest"

// BlockRecord is a block as recorded on the ledger. Immutable once
// accepted.
type BlockRecord struct {
	BlockID       string        `json:"blockId"`              // BlockID is the {origin}_{workflow} identifier
	PreviousHash  digest.Digest `json:"previousHash"`         // PreviousHash is the parent content hash, genesis if none
	AgentAddress  string        `json:"agentAddress"`         // AgentAddress is the submitting agent's 20-byte address
	ContentHash   digest.Digest `json:"contentHash"`          // ContentHash is the declared digest of the block content
	Timestamp     int64         `json:"timestamp"`            // Timestamp is the acceptance time in unix seconds
	ConsensusType string        `json:"consensusType"`        // ConsensusType names the consensus mechanism recorded
	LedgerRef     string        `json:"ledgerRef"`            // LedgerRef names the target ledger or contract
	ContentRef    string        `json:"contentRef,omitempty"` // ContentRef addresses the stored bundle, empty if none
}

// Submission holds the fields recorded for a new block.
type Submission struct {
	BlockID       string        `json:"blockId"`
	PreviousHash  digest.Digest `json:"previousHash"`
	ContentHash   digest.Digest `json:"contentHash"`
	ConsensusType string        `json:"consensusType"`
	LedgerRef     string        `json:"ledgerRef"`
	ContentRef    string        `json:"contentRef,omitempty"`
}

// Client is the ledger capability consumed by the scribe. SubmitBlock
// returns only after the ledger confirms durable acceptance. GetBlock
// returns (nil, nil) for an absent block. LatestBlockHash returns the
// zero digest for an empty ledger. Implementations carry their own
// timeout policy; the scribe imposes none.
type Client interface {
	SubmitBlock(sub Submission) error
	GetBlock(blockID string) (*BlockRecord, error)
	LatestBlockHash() (digest.Digest, error)
	VerifyBlock(blockID string, d digest.Digest) (bool, error)
}
