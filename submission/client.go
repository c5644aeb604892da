// Package submission ships a completed ballot payload to the collection
// endpoint. It owns the transport only; all cryptography happens before
// the payload reaches this package.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/macanepa/client-side-voting-encryption/models"
)

const (
	// HeaderVoteType marks the payload format for the collection server.
	HeaderVoteType = "X-Vote-Type"

	// VoteTypePaillierZKP is the only payload format this client emits.
	VoteTypePaillierZKP = "paillier-zkp"

	defaultTimeout = 30 * time.Second
)

// Client posts vote submissions to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a client for the given ballot endpoint. A nil
// httpClient selects a default with a 30s timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Submit posts the submission as JSON and decodes the authority's
// verdict. Non-2xx responses with a decodable body still return the
// response so callers can inspect the rejection report.
func (c *Client) Submit(ctx context.Context, sub *models.VoteSubmission) (*models.SubmissionResponse, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission: nil payload")
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("submission: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("submission: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderVoteType, VoteTypePaillierZKP)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submission: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result models.SubmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("submission: failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return &result, nil
}
