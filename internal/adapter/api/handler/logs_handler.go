package handler

import (
	"net/http"

	"github.com/V4T54L/docsearch/internal/pkg/apperr"
	"github.com/V4T54L/docsearch/internal/usecase"
)

// LogsHandler handles GET /api/logs?provider=&limit=.
type LogsHandler struct {
	query *usecase.LogsQuery
}

// NewLogsHandler creates a new LogsHandler.
func NewLogsHandler(query *usecase.LogsQuery) *LogsHandler {
	return &LogsHandler{query: query}
}

// ServeHTTP returns matching events, newest first.
func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	events, err := h.query.List(r.Context(), params.Get("provider"), params.Get("limit"))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	apperr.WriteJSON(w, http.StatusOK, events)
}
