package ledger

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"BlockScribe/internal/digest"
	"BlockScribe/internal/fault"
	"BlockScribe/internal/logger"
)

// HTTPClient talks to a ledger node over its JSON HTTP API. Every
// submission carries a BLS signature over the canonical payload so
// the node can attribute it to the configured agent address.
type HTTPClient struct {
	endpoint string  // endpoint is the node base URL, e.g. "http://127.0.0.1:9545"
	address  string  // address is the agent's 0x-prefixed 20-byte address
	signer   *Signer // signer produces submission signatures
}

// NewHTTPClient creates a ledger client for the given node endpoint.
func NewHTTPClient(endpoint, address string, signer *Signer) *HTTPClient {
	return &HTTPClient{endpoint: endpoint, address: address, signer: signer}
}

// submitRequest is the wire form of a signed submission.
type submitRequest struct {
	Submission
	AgentAddress string `json:"agentAddress"`
	Signature    string `json:"signature"`
	SignerKey    string `json:"signerKey"`
}

// submitResponse is the node's acceptance confirmation.
type submitResponse struct {
	Accepted bool   `json:"accepted"`
	BlockID  string `json:"blockId"`
}

// SubmitBlock signs and posts a submission, returning once the node
// confirms durable acceptance.
func (c *HTTPClient) SubmitBlock(sub Submission) error {
	payload := SigningPayload(sub)

	req := submitRequest{
		Submission:   sub,
		AgentAddress: c.address,
		Signature:    hex.EncodeToString(c.signer.Sign(payload)),
		SignerKey:    hex.EncodeToString(c.signer.PublicKey()),
	}

	var resp submitResponse
	if err := c.postJSON("/block", req, &resp); err != nil {
		return err
	}

	if !resp.Accepted {
		return fault.New(fault.External, "ledger did not accept block %s", sub.BlockID)
	}

	logger.Debug("block accepted by ledger", "block", sub.BlockID, "parent", sub.PreviousHash)

	return nil
}

// GetBlock fetches a block record by ID. Returns (nil, nil) when the
// ledger has no such block.
func (c *HTTPClient) GetBlock(blockID string) (*BlockRecord, error) {
	var rec BlockRecord

	found, err := c.getJSON("/block/"+url.PathEscape(blockID), &rec)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &rec, nil
}

// LatestBlockHash fetches the content hash of the most recent block.
// Returns the zero digest for an empty ledger.
func (c *HTTPClient) LatestBlockHash() (digest.Digest, error) {
	var resp struct {
		Hash string `json:"hash"`
	}

	found, err := c.getJSON("/chain/latest", &resp)
	if err != nil {
		return digest.Digest{}, err
	}

	if !found || resp.Hash == "" {
		return digest.Digest{}, nil
	}

	d, err := digest.Parse(resp.Hash)
	if err != nil {
		return digest.Digest{}, fault.Wrap(fault.External, err, "ledger returned malformed latest hash")
	}

	return d, nil
}

// VerifyBlock asks the ledger whether the digest matches the block's
// on-chain record.
func (c *HTTPClient) VerifyBlock(blockID string, d digest.Digest) (bool, error) {
	var resp struct {
		Verified bool `json:"verified"`
	}

	path := "/block/" + url.PathEscape(blockID) + "/verify?digest=" + d.String()

	found, err := c.getJSON(path, &resp)
	if err != nil {
		return false, err
	}

	if !found {
		return false, nil
	}

	return resp.Verified, nil
}

// getJSON performs a GET request and decodes the JSON response.
// Returns found=false for a 404 without error.
func (c *HTTPClient) getJSON(path string, result any) (bool, error) {
	resp, err := http.Get(c.endpoint + path)
	if err != nil {
		return false, fault.Wrap(fault.External, err, "GET %s", path)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if resp.StatusCode != http.StatusOK {
		return false, fault.New(fault.External, "GET %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fault.Wrap(fault.External, err, "decode response for %s", path)
	}

	return true, nil
}

// postJSON performs a POST request with a JSON body and decodes the
// JSON response.
func (c *HTTPClient) postJSON(path string, body, result any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request for %s:\n%w", path, err)
	}

	resp, err := http.Post(c.endpoint+path, "application/json", bytes.NewReader(jsonBytes))
	if err != nil {
		return fault.Wrap(fault.External, err, "POST %s", path)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fault.New(fault.External, "POST %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fault.Wrap(fault.External, err, "decode response for %s", path)
	}

	return nil
}
