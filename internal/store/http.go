package store

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"BlockScribe/internal/fault"
)

// maxBundleSize caps downloaded bundle size.
const maxBundleSize = 64 << 20 // 64 MB

// HTTP is a client for a remote bundle gateway. Sealing happens on
// this side, so the gateway only ever holds compressed (and possibly
// encrypted) bytes addressed by their blake3 reference.
type HTTP struct {
	endpoint string // endpoint is the gateway base URL
}

// NewHTTP creates a remote store client.
func NewHTTP(endpoint string) *HTTP {
	return &HTTP{endpoint: endpoint}
}

// Upload seals the bundle locally and PUTs it under its reference.
// The gateway is expected to verify the reference against the body.
func (s *HTTP) Upload(b Bundle, encryptionKey string) (string, error) {
	sealed, err := seal(b, encryptionKey)
	if err != nil {
		return "", err
	}

	ref := contentRef(sealed)

	req, err := http.NewRequest(http.MethodPut, s.endpoint+"/bundle/"+ref, bytes.NewReader(sealed))
	if err != nil {
		return "", fmt.Errorf("build upload request:\n%w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fault.Wrap(fault.External, err, "upload bundle %s", ref)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fault.New(fault.External, "upload bundle %s: status %d", ref, resp.StatusCode)
	}

	return ref, nil
}

// Download fetches sealed bytes by reference and unseals them locally.
func (s *HTTP) Download(ref, decryptionKey string) (Bundle, error) {
	resp, err := http.Get(s.endpoint + "/bundle/" + ref)
	if err != nil {
		return Bundle{}, fault.Wrap(fault.External, err, "download bundle %s", ref)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Bundle{}, fault.New(fault.NotFound, "bundle %s not found", ref)
	}

	if resp.StatusCode != http.StatusOK {
		return Bundle{}, fault.New(fault.External, "download bundle %s: status %d", ref, resp.StatusCode)
	}

	sealed, err := io.ReadAll(io.LimitReader(resp.Body, maxBundleSize))
	if err != nil {
		return Bundle{}, fault.Wrap(fault.External, err, "read bundle %s", ref)
	}

	if got := contentRef(sealed); got != ref {
		return Bundle{}, fault.New(fault.External,
			"bundle %s failed content addressing check: body hashes to %s", ref, got)
	}

	return unseal(sealed, decryptionKey)
}
