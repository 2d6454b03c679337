package dialog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/V4T54L/docsearch/internal/domain"
)

// Reporter posts client-observed searches to /api/log.
type Reporter struct {
	url    string
	client *http.Client
}

// NewReporter creates a Reporter for the site at baseURL.
func NewReporter(baseURL string, client *http.Client) *Reporter {
	return &Reporter{url: baseURL + "/api/log", client: client}
}

type reportBody struct {
	Provider    string `json:"provider"`
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
	DurationMs  int64  `json:"duration_ms"`
}

// Report sends one event.
func (r *Reporter) Report(ctx context.Context, query string, resultCount int, duration time.Duration) error {
	payload, err := json.Marshal(reportBody{
		Provider:    domain.ProviderLexical,
		Query:       query,
		ResultCount: resultCount,
		DurationMs:  duration.Round(time.Millisecond).Milliseconds(),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("log endpoint returned %s", resp.Status)
	}
	return nil
}

// Lexical searches the hosted index directly and reports each distinct
// (query, result count) observation once.
type Lexical struct {
	searcher domain.LexicalSearcher
	reporter *Reporter
	logger   *slog.Logger
	loading  atomic.Bool

	mu            sync.Mutex
	lastLoggedKey string
}

// NewLexical creates a lexical dialog.
func NewLexical(searcher domain.LexicalSearcher, reporter *Reporter, logger *slog.Logger) *Lexical {
	return &Lexical{
		searcher: searcher,
		reporter: reporter,
		logger:   logger.With("component", "lexical_dialog"),
	}
}

// Loading reports whether a query is in flight.
func (d *Lexical) Loading() bool {
	return d.loading.Load()
}

// Search queries the index, displays the hits and reports the observation.
// Blank queries display nothing and are never reported. Report failures are
// only logged.
func (d *Lexical) Search(ctx context.Context, query string, display func(Results)) error {
	if query == "" {
		display(Results{Empty: true})
		return nil
	}

	d.loading.Store(true)
	start := time.Now()
	hits, err := d.searcher.Search(ctx, query)
	duration := time.Since(start)
	d.loading.Store(false)

	var entries []domain.Entry
	if err == nil {
		entries, err = decodeHits(hits)
	}
	if err == nil {
		display(Results{Query: query, Entries: entries, Empty: len(entries) == 0})
	}

	d.report(ctx, query, len(entries), duration)
	return err
}

func (d *Lexical) report(ctx context.Context, query string, count int, duration time.Duration) {
	key := query + "|" + strconv.Itoa(count)

	d.mu.Lock()
	if key == d.lastLoggedKey {
		d.mu.Unlock()
		return
	}
	d.lastLoggedKey = key
	d.mu.Unlock()

	if err := d.reporter.Report(ctx, query, count, duration); err != nil {
		d.logger.Debug("failed to report search", "query", query, "error", err)
	}
}

func decodeHits(hits []json.RawMessage) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0, len(hits))
	for _, h := range hits {
		var e domain.Entry
		if err := json.Unmarshal(h, &e); err != nil {
			return nil, fmt.Errorf("unexpected hit shape: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
