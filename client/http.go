package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// envelope mirrors the service's uniform response shape.
type envelope struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Class  string          `json:"class,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// get performs a GET request and unwraps the envelope into result.
func (c *Client) get(path string, result any) error {
	resp, err := http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s:\n%w", path, err)
	}

	return unwrap(resp, path, result)
}

// post performs a POST request with a JSON body and unwraps the
// envelope into result.
func (c *Client) post(path string, body, result any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body for %s:\n%w", path, err)
	}

	resp, err := http.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("POST %s:\n%w", path, err)
	}

	return unwrap(resp, path, result)
}

// unwrap decodes an envelope, surfacing failures as OperationError.
func unwrap(resp *http.Response, path string, result any) error {
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response for %s:\n%w", path, err)
	}

	if !env.OK {
		return &OperationError{Message: env.Error, Class: env.Class, Status: resp.StatusCode}
	}

	if result != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("decode result for %s:\n%w", path, err)
		}
	}

	return nil
}
