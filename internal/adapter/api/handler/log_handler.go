package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/V4T54L/docsearch/internal/adapter/session"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
	"github.com/V4T54L/docsearch/internal/usecase"
)

const maxLogBodySize = 64 << 10

// logRequest keeps each field raw so that wrongly typed values fall back to
// defaults instead of failing the whole report.
type logRequest struct {
	Provider    json.RawMessage `json:"provider"`
	Query       json.RawMessage `json:"query"`
	ResultCount json.RawMessage `json:"result_count"`
	DurationMs  json.RawMessage `json:"duration_ms"`
}

type logResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// LogHandler handles POST /api/log, the browser's report of a search it ran.
type LogHandler struct {
	service *usecase.SearchService
	logger  *slog.Logger
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(service *usecase.SearchService, logger *slog.Logger) *LogHandler {
	return &LogHandler{
		service: service,
		logger:  logger.With("component", "log_handler"),
	}
}

// ServeHTTP stores the reported event and waits for the write.
func (h *LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	sessionID := session.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxLogBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.fail(w, h.service.RecordClientFailure(ctx, sessionID, start, err))
		return
	}

	var req logRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.fail(w, h.service.RecordClientFailure(ctx, sessionID, start, err))
		return
	}

	event := usecase.ClientEvent{
		Provider:    stringOr(req.Provider, domain.ProviderUnknown),
		Query:       stringOr(req.Query, ""),
		ResultCount: int(numberOrZero(req.ResultCount)),
		DurationMs:  int64(numberOrZero(req.DurationMs)),
	}
	if err := h.service.RecordClientEvent(ctx, sessionID, event, start); err != nil {
		h.fail(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, logResponse{OK: true})
}

func (h *LogHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("/api/log error", "error", err)
	apperr.WriteJSON(w, http.StatusInternalServerError, logResponse{OK: false, Error: errorMessage(err)})
}

// errorMessage is the caller-facing text of err.
func errorMessage(err error) string {
	if appErr, ok := apperr.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// stringOr returns a JSON string's value, def for an absent or null field, and
// the raw JSON text for any other value.
func stringOr(raw json.RawMessage, def string) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// numberOrZero returns a JSON number's value and 0 for anything else.
func numberOrZero(raw json.RawMessage) float64 {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		return 0
	}
	return f
}
