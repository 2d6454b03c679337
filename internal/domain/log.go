package domain

import (
	"errors"
	"time"
)

// EventSearchRequest is the event tag carried by every search log record.
const EventSearchRequest = "search_request"

// Status is the outcome of a search request.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Provider identifiers. Client-posted events may carry other values.
const (
	ProviderLexical = "algolia"
	ProviderVector  = "mixedbread"
	ProviderUnknown = "unknown"
)

// Failure reasons recorded on error events.
const (
	ReasonEnvMissing   = "env_missing"
	ReasonMissingQuery = "missing_query"
	ReasonException    = "exception"
)

// ErrStoreNotConfigured is returned by sinks and readers whose backing store was never configured.
var ErrStoreNotConfigured = errors.New("log store is not configured")

// ErrStoreUnavailable wraps failures to reach a configured log store.
var ErrStoreUnavailable = errors.New("log store is unavailable")

// SearchLogEvent is one record per search request attempt.
type SearchLogEvent struct {
	Event       string    `json:"event"`
	Status      Status    `json:"status"`
	Provider    string    `json:"provider"`
	SessionID   string    `json:"session_id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	DurationMs  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
	Reason      string    `json:"reason,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// NewSearchLogEvent builds a successful search event. Timestamp is left to the sink.
func NewSearchLogEvent(provider, sessionID, query string, resultCount int, duration time.Duration) SearchLogEvent {
	return SearchLogEvent{
		Event:       EventSearchRequest,
		Status:      StatusOK,
		Provider:    provider,
		SessionID:   sessionID,
		Query:       query,
		ResultCount: resultCount,
		DurationMs:  durationMillis(duration),
	}
}

// Failed marks the event as an error with the given reason and cause.
// The result count of a failed request is always zero.
func (e SearchLogEvent) Failed(reason string, cause error) SearchLogEvent {
	e.Status = StatusError
	e.Reason = reason
	e.ResultCount = 0
	if cause != nil {
		e.Error = cause.Error()
	}
	return e
}

// LogFilter narrows a read of the search log.
type LogFilter struct {
	Provider string // empty means all providers
	Limit    int
}

func durationMillis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
