// Package algolia queries a hosted Algolia index.
package algolia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/config"
)

// ErrNotConfigured is returned when the app id, API key or index name is absent.
var ErrNotConfigured = errors.New("algolia is not configured")

// index is the part of *search.Index the client uses.
type index interface {
	Search(query string, opts ...interface{}) (search.QueryRes, error)
}

// Client implements domain.LexicalSearcher.
type Client struct {
	index index
}

// NewClient creates a client for the configured index. An incomplete
// configuration yields a client whose searches fail with ErrNotConfigured.
func NewClient(cfg config.AlgoliaConfig) *Client {
	if !cfg.Configured() {
		return &Client{}
	}
	return &Client{index: search.NewClient(cfg.AppID, cfg.APIKey).InitIndex(cfg.Index)}
}

// Search returns the index hits unchanged, one JSON document per hit.
// The SDK call does not take a context; ctx is only checked before the call.
func (c *Client) Search(ctx context.Context, query string) ([]json.RawMessage, error) {
	if c.index == nil {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.index.Search(query)
	if err != nil {
		return nil, fmt.Errorf("algolia search failed: %w", err)
	}

	hits := make([]json.RawMessage, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			return nil, fmt.Errorf("failed to encode algolia hit: %w", err)
		}
		hits = append(hits, raw)
	}
	return hits, nil
}

var _ domain.LexicalSearcher = (*Client)(nil)
