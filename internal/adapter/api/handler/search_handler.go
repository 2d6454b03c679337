package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/docsearch/internal/adapter/session"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
	"github.com/V4T54L/docsearch/internal/usecase"
)

// SearchReporter is told about every search served, e.g. by the live rate stream.
type SearchReporter interface {
	ReportSearch(provider string)
}

// SearchHandler serves the lexical and vector search routes.
type SearchHandler struct {
	service *usecase.SearchService
	events  SearchReporter
	logger  *slog.Logger
}

// NewSearchHandler creates a new SearchHandler. events may be nil.
func NewSearchHandler(service *usecase.SearchService, events SearchReporter, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		events:  events,
		logger:  logger.With("component", "search_handler"),
	}
}

// Lexical handles GET /api/search?q=. Provider errors fall through to a plain 500.
func (h *SearchHandler) Lexical(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	hits, err := h.service.SearchLexical(r.Context(), session.FromContext(r.Context()), query)
	h.report(domain.ProviderLexical)
	if err != nil {
		h.logger.Error("lexical search failed", "query", query, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, hits)
}

// Vector handles GET /api/vector-store?query=.
func (h *SearchHandler) Vector(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.SearchVector(r.Context(), session.FromContext(r.Context()), r.URL.Query().Get("query"))
	h.report(domain.ProviderVector)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, entries)
}

func (h *SearchHandler) report(provider string) {
	if h.events != nil {
		h.events.ReportSearch(provider)
	}
}
