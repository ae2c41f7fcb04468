// Package client provides a typed Go client for the scribe HTTP API.
package client

import (
	"fmt"
)

// Client connects to a scribe service via HTTP.
type Client struct {
	baseURL string // baseURL is the service base URL, e.g. "http://127.0.0.1:8390"
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// FileInput is a declared file whose content is either a literal
// payload or a path inside the service's sandbox root.
type FileInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SubmitRequest is a proposed block submission.
type SubmitRequest struct {
	BlockID       string      `json:"blockId"`
	ContentHash   string      `json:"contentHash"`
	PreviousHash  string      `json:"previousHash,omitempty"`
	Content       string      `json:"content,omitempty"`
	Files         []FileInput `json:"files,omitempty"`
	EncryptionKey string      `json:"encryptionKey,omitempty"`
	ConsensusType string      `json:"consensusType,omitempty"`
	LedgerRef     string      `json:"ledgerRef,omitempty"`
}

// Receipt describes an accepted submission.
type Receipt struct {
	BlockID      string `json:"blockId"`
	PreviousHash string `json:"previousHash"`
	ContentHash  string `json:"contentHash"`
	ContentRef   string `json:"contentRef,omitempty"`
}

// BlockRecord is a block as recorded on the ledger.
type BlockRecord struct {
	BlockID       string `json:"blockId"`
	PreviousHash  string `json:"previousHash"`
	AgentAddress  string `json:"agentAddress"`
	ContentHash   string `json:"contentHash"`
	Timestamp     int64  `json:"timestamp"`
	ConsensusType string `json:"consensusType"`
	LedgerRef     string `json:"ledgerRef"`
	ContentRef    string `json:"contentRef,omitempty"`
}

// AuditResult is the outcome of auditing one block. Verified is
// "true", "false", or "unknown".
type AuditResult struct {
	BlockID      string `json:"blockId"`
	Verified     string `json:"verified"`
	OnChainHash  string `json:"onChainHash"`
	ComputedHash string `json:"computedHash,omitempty"`
	ErrorClass   string `json:"errorClass,omitempty"`
	Note         string `json:"note,omitempty"`
}

// OperationError is a failure envelope returned by the service.
type OperationError struct {
	Message string // Message is the service's error description
	Class   string // Class is the error classification
	Status  int    // Status is the HTTP status code
}

// Error formats the failure with its classification.
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Class)
}

// Submit submits a new block and returns its receipt.
func (c *Client) Submit(req SubmitRequest) (*Receipt, error) {
	var receipt Receipt
	if err := c.post("/submit", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Block fetches a block record by ID.
func (c *Client) Block(blockID string) (*BlockRecord, error) {
	var rec BlockRecord
	if err := c.get("/block/"+blockID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestHash fetches the latest block hash on the ledger, genesis
// when the ledger is empty.
func (c *Client) LatestHash() (string, error) {
	var res struct {
		Hash string `json:"hash"`
	}

	if err := c.get("/chain/latest", &res); err != nil {
		return "", err
	}

	return res.Hash, nil
}

// Audit recomputes a block's stored bundle digest against the chain.
func (c *Client) Audit(blockID, decryptionKey string) (*AuditResult, error) {
	body := map[string]string{"blockId": blockID}
	if decryptionKey != "" {
		body["decryptionKey"] = decryptionKey
	}

	var res AuditResult
	if err := c.post("/audit", body, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// Verify asks the ledger whether a digest matches a block. The digest
// is accepted with or without the 0x prefix.
func (c *Client) Verify(blockID, digest string) (bool, error) {
	body := map[string]string{"blockId": blockID, "digest": digest}

	var res struct {
		Verified bool `json:"verified"`
	}

	if err := c.post("/verify", body, &res); err != nil {
		return false, err
	}

	return res.Verified, nil
}
