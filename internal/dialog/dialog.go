// Package dialog provides the two interchangeable search dialog implementations.
// The implementation is chosen once from the configured search mode.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/config"
)

// Results is what a dialog displays for one query. Empty is set when there is
// nothing to show, either because the query was blank or nothing matched.
type Results struct {
	Query   string
	Entries []domain.Entry
	Empty   bool
}

// SearchDialog runs a query and hands the results to display.
type SearchDialog interface {
	Search(ctx context.Context, query string, display func(Results)) error
	Loading() bool
}

// Deps are the collaborators a dialog may need.
type Deps struct {
	// BaseURL is the documentation site serving /api/*.
	BaseURL string
	// HTTPClient should keep cookies so the search session survives between queries.
	HTTPClient *http.Client
	// Lexical queries the hosted index directly; used in lexical mode only.
	Lexical domain.LexicalSearcher
	Logger  *slog.Logger
}

// New returns the dialog for mode.
func New(mode config.SearchMode, deps Deps) (SearchDialog, error) {
	if deps.HTTPClient == nil {
		client, err := NewHTTPClient()
		if err != nil {
			return nil, err
		}
		deps.HTTPClient = client
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	base := strings.TrimRight(deps.BaseURL, "/")

	switch mode {
	case config.SearchModeLexical:
		if deps.Lexical == nil {
			return nil, fmt.Errorf("lexical dialog requires a lexical searcher")
		}
		return NewLexical(deps.Lexical, NewReporter(base, deps.HTTPClient), deps.Logger), nil
	case config.SearchModeVector:
		return NewVector(base, deps.HTTPClient), nil
	default:
		return nil, fmt.Errorf("unsupported search mode %q", mode)
	}
}

// NewHTTPClient returns a traced client with a cookie jar.
func NewHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &http.Client{
		Jar:       jar,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, nil
}
