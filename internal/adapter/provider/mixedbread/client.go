// Package mixedbread queries a Mixedbread vector store over its REST API.
package mixedbread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/config"
)

const (
	searchPath = "/v1/vector_stores/search"
	topK       = 10
	maxErrBody = 512
)

type searchOptions struct {
	ReturnMetadata bool `json:"return_metadata"`
	Rerank         bool `json:"rerank"`
}

type searchRequest struct {
	Query                  string        `json:"query"`
	VectorStoreIdentifiers []string      `json:"vector_store_identifiers"`
	TopK                   int           `json:"top_k"`
	SearchOptions          searchOptions `json:"search_options"`
}

type searchResponse struct {
	Data []domain.VectorChunk `json:"data"`
}

// Client implements domain.VectorSearcher.
type Client struct {
	apiKey     string
	storeID    string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Mixedbread client. Outbound requests are traced with
// otelhttp. No timeout is set; the transport's defaults apply.
func NewClient(cfg config.MixedbreadConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		storeID: cfg.VectorStoreID,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Configured reports whether the API key and vector store id are set.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.storeID != ""
}

// Search returns the top matching chunks with generated metadata, reranked.
func (c *Client) Search(ctx context.Context, query string) ([]domain.VectorChunk, error) {
	payload, err := json.Marshal(searchRequest{
		Query:                  query,
		VectorStoreIdentifiers: []string{c.storeID},
		TopK:                   topK,
		SearchOptions:          searchOptions{ReturnMetadata: true, Rerank: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mixedbread request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create mixedbread request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call mixedbread api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return nil, fmt.Errorf("mixedbread api returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode mixedbread response: %w", err)
	}
	return out.Data, nil
}

var _ domain.VectorSearcher = (*Client)(nil)
