package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
)

// Vector searches through the site's /api/vector-store route, which logs
// server-side.
type Vector struct {
	url     string
	client  *http.Client
	loading atomic.Bool
}

// NewVector creates a vector dialog for the site at baseURL.
func NewVector(baseURL string, client *http.Client) *Vector {
	return &Vector{url: baseURL + "/api/vector-store", client: client}
}

// Loading reports whether a query is in flight.
func (d *Vector) Loading() bool {
	return d.loading.Load()
}

// Search fetches the entries for query and displays them.
func (d *Vector) Search(ctx context.Context, query string, display func(Results)) error {
	if query == "" {
		display(Results{Empty: true})
		return nil
	}

	d.loading.Store(true)
	defer d.loading.Store(false)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url+"?query="+url.QueryEscape(query), nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("vector search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apperr.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return fmt.Errorf("vector search failed (%d): %s", resp.StatusCode, body.Error)
		}
		return fmt.Errorf("vector search failed: %s", resp.Status)
	}

	var entries []domain.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode vector results: %w", err)
	}
	display(Results{Query: query, Entries: entries, Empty: len(entries) == 0})
	return nil
}
