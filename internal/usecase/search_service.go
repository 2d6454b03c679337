package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/V4T54L/docsearch/internal/adapter/metrics"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
)

// Public messages of the vector route.
const (
	MsgEnvironmentSetupFailed = "Environment setup failed"
	MsgQueryRequired          = "Query is required"
	MsgSearchFailed           = "Search failed"
)

var errVectorEnv = errors.New("MXBAI_API_KEY or VECTOR_STORE_ID missing")

// SinkRouting binds each entry point to the recorder of its log sink.
type SinkRouting struct {
	Lexical *Recorder // written in the background
	Vector  *Recorder // awaited, failures swallowed
	Client  *Recorder // awaited, failure is the outcome
}

// ClientEvent is a search observed and reported by the browser.
type ClientEvent struct {
	Provider    string
	Query       string
	ResultCount int
	DurationMs  int64
}

// SearchService orchestrates a search request: time the provider call, reshape
// the results and log exactly one event per attempt.
type SearchService struct {
	lexical    domain.LexicalSearcher
	vector     domain.VectorSearcher
	sinks      SinkRouting
	dispatcher *Dispatcher
	metrics    *metrics.SearchMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewSearchService creates a new SearchService.
func NewSearchService(
	lexical domain.LexicalSearcher,
	vector domain.VectorSearcher,
	sinks SinkRouting,
	dispatcher *Dispatcher,
	m *metrics.SearchMetrics,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		lexical:    lexical,
		vector:     vector,
		sinks:      sinks,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger.With("component", "search_service"),
		now:        time.Now,
	}
}

// SearchVector queries the vector store and returns the flattened page/text entries.
// Configuration is checked before the query. Errors are *apperr.AppError values
// whose messages are safe to show; the provider's own message is only logged.
func (s *SearchService) SearchVector(ctx context.Context, sessionID, query string) ([]domain.Entry, error) {
	ctx, span := otel.Tracer("search-service").Start(ctx, "SearchVector")
	defer span.End()

	start := s.now()
	event := domain.NewSearchLogEvent(domain.ProviderVector, sessionID, "", 0, 0)

	if !s.vector.Configured() {
		s.finishVector(ctx, event.Failed(domain.ReasonEnvMissing, nil), start, 0)
		span.SetStatus(codes.Error, domain.ReasonEnvMissing)
		return nil, apperr.ConfigurationError(domain.ReasonEnvMissing, MsgEnvironmentSetupFailed, errVectorEnv)
	}

	if query == "" {
		s.finishVector(ctx, event.Failed(domain.ReasonMissingQuery, nil), start, 0)
		span.SetStatus(codes.Error, domain.ReasonMissingQuery)
		return nil, apperr.ValidationError(domain.ReasonMissingQuery, MsgQueryRequired)
	}
	event.Query = query
	span.SetAttributes(attribute.String("query", query))

	chunks, err := s.vector.Search(ctx, query)
	if err != nil {
		s.finishVector(ctx, event.Failed(domain.ReasonException, err), start, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ReasonException)
		return nil, apperr.ProviderError(domain.ReasonException, MsgSearchFailed, err)
	}

	unique := DedupByFileID(chunks)
	entries := FlattenEntries(unique)
	event.ResultCount = len(unique)
	s.finishVector(ctx, event, start, len(entries))
	span.SetAttributes(attribute.Int("result_count", len(unique)))
	return entries, nil
}

// finishVector emits the operational log line and awaits the log write.
// A failed write is logged and otherwise ignored.
func (s *SearchService) finishVector(ctx context.Context, event domain.SearchLogEvent, start time.Time, returned int) {
	event = s.observe(event, start)

	attrs := []any{
		"status", event.Status,
		"provider", event.Provider,
		"session_id", event.SessionID,
		"query", event.Query,
		"result_count", event.ResultCount,
		"returned_items_count", returned,
		"duration_ms", event.DurationMs,
	}
	if event.Status == domain.StatusOK {
		s.logger.Info(domain.EventSearchRequest, attrs...)
	} else {
		attrs = append(attrs, "reason", event.Reason)
		if event.Error != "" {
			attrs = append(attrs, "error", event.Error)
		}
		s.logger.Warn(domain.EventSearchRequest, attrs...)
	}

	if err := s.sinks.Vector.Record(ctx, event); err != nil {
		if errors.Is(err, domain.ErrStoreNotConfigured) {
			s.logger.Debug("search log sink not configured, event not stored", "sink", s.sinks.Vector.Name())
			return
		}
		s.logger.Error("search_log_write_error", "session_id", event.SessionID, "sink", s.sinks.Vector.Name(), "error", err)
	}
}

// SearchLexical queries the lexical index. The log line is written in the
// background; a provider error is returned unchanged after it is logged.
func (s *SearchService) SearchLexical(ctx context.Context, sessionID, query string) ([]json.RawMessage, error) {
	ctx, span := otel.Tracer("search-service").Start(ctx, "SearchLexical")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	start := s.now()
	event := domain.NewSearchLogEvent(domain.ProviderLexical, sessionID, query, 0, 0)

	hits, err := s.lexical.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lexical search failed")
		s.sinks.Lexical.RecordAsync(ctx, s.dispatcher, s.observe(event.Failed("", err), start))
		return nil, err
	}
	if hits == nil {
		hits = []json.RawMessage{}
	}

	event.ResultCount = len(hits)
	s.sinks.Lexical.RecordAsync(ctx, s.dispatcher, s.observe(event, start))
	return hits, nil
}

// RecordClientEvent stores a search the browser observed, waiting for the write.
func (s *SearchService) RecordClientEvent(ctx context.Context, sessionID string, ce ClientEvent, start time.Time) error {
	provider := ce.Provider
	if provider == "" {
		provider = domain.ProviderUnknown
	}
	event := domain.NewSearchLogEvent(provider, sessionID, ce.Query, max(ce.ResultCount, 0), 0)
	event.DurationMs = max(ce.DurationMs, 0)

	if err := s.sinks.Client.Record(ctx, event); err != nil {
		return s.clientFailure(ctx, sessionID, start, err)
	}
	return nil
}

// RecordClientFailure handles a report that could not be read. It stores a
// best-effort error row and returns the error the caller should respond with.
func (s *SearchService) RecordClientFailure(ctx context.Context, sessionID string, start time.Time, cause error) error {
	return s.clientFailure(ctx, sessionID, start, apperr.InternalError(cause.Error(), cause))
}

func (s *SearchService) clientFailure(ctx context.Context, sessionID string, start time.Time, err error) error {
	if !errors.Is(err, domain.ErrStoreNotConfigured) {
		s.logger.Error("client search report failed", "session_id", sessionID, "error", err)

		failed := domain.NewSearchLogEvent(domain.ProviderUnknown, sessionID, "", 0, s.now().Sub(start))
		failed.Status = domain.StatusError
		recErr := s.sinks.Client.Record(ctx, failed)
		if !errors.Is(recErr, domain.ErrStoreNotConfigured) {
			return err
		}
	}
	return apperr.ConfigurationError(domain.ReasonEnvMissing, MissingStoreMessage(s.sinks.Client.Name()), domain.ErrStoreNotConfigured)
}

// observe stamps the duration and updates the search metrics.
func (s *SearchService) observe(event domain.SearchLogEvent, start time.Time) domain.SearchLogEvent {
	elapsed := s.now().Sub(start)
	event.DurationMs = max(elapsed.Milliseconds(), 0)

	s.metrics.SearchesTotal.WithLabelValues(event.Provider, string(event.Status), event.Reason).Inc()
	s.metrics.SearchDuration.WithLabelValues(event.Provider).Observe(elapsed.Seconds())
	if event.Status == domain.StatusOK {
		s.metrics.SearchResults.WithLabelValues(event.Provider).Observe(float64(event.ResultCount))
	}
	return event
}

// MissingStoreMessage is the public message for a log store that was never configured.
func MissingStoreMessage(sink string) string {
	switch sink {
	case "postgres":
		return "DATABASE_URL missing"
	case "redis":
		return "REDIS_URL missing"
	default:
		return sink + " log store missing"
	}
}
