// Package docs provides the documentation similarity-search collaborator.
// The ranking itself happens in a remote retrieval service; this is a
// thin authenticated client over it.
package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Snippet is one ranked documentation fragment.
type Snippet struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Service is the search capability consumed by the search tool.
type Service interface {
	Search(ctx context.Context, query string, k int) ([]Snippet, error)
}

// Client talks to the retrieval API over HTTP with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a docs search client. The token may be empty when
// the retrieval service allows anonymous access.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type searchResponse struct {
	Results []Snippet `json:"results"`
}

// Search posts the query to the retrieval service and returns the
// ranked snippets, best match first.
func (c *Client) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	body, err := json.Marshal(searchRequest{Query: query, K: k})
	if err != nil {
		return nil, fmt.Errorf("docs search: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("docs search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "pipewarden/0.1")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docs search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docs search: retrieval service returned %s", resp.Status)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("docs search: decode response: %w", err)
	}
	return decoded.Results, nil
}
