package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
)

// Limits applied to log reads.
const (
	DefaultLogLimit = 500
	MinLogLimit     = 1
	MaxLogLimit     = 2000
)

// ParseLimit interprets a raw limit parameter. Absent, zero or non-numeric
// values fall back to DefaultLogLimit; everything else is clamped to
// [MinLogLimit, MaxLogLimit] and truncated to an integer.
func ParseLimit(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return DefaultLogLimit
	}
	if v == 0 || math.IsNaN(v) {
		return DefaultLogLimit
	}
	return int(math.Min(math.Max(v, MinLogLimit), MaxLogLimit))
}

// LogsQuery reads back stored search events for the comparison view.
type LogsQuery struct {
	reader   domain.SearchLogReader
	sinkName string
	logger   *slog.Logger
}

// NewLogsQuery creates a LogsQuery over reader. sinkName names the store in
// configuration errors.
func NewLogsQuery(reader domain.SearchLogReader, sinkName string, logger *slog.Logger) *LogsQuery {
	return &LogsQuery{
		reader:   reader,
		sinkName: sinkName,
		logger:   logger.With("component", "logs_query"),
	}
}

// List returns events for provider (all when empty), newest first.
// An unconfigured or unreachable store is a configuration error; any other
// failure carries the underlying message.
func (q *LogsQuery) List(ctx context.Context, provider, rawLimit string) ([]domain.SearchLogEvent, error) {
	filter := domain.LogFilter{Provider: provider, Limit: ParseLimit(rawLimit)}

	events, err := q.reader.List(ctx, filter)
	switch {
	case err == nil:
		if events == nil {
			events = []domain.SearchLogEvent{}
		}
		return events, nil
	case errors.Is(err, domain.ErrStoreNotConfigured):
		return nil, apperr.ConfigurationError(domain.ReasonEnvMissing, MissingStoreMessage(q.sinkName), err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		q.logger.Error("log store unreachable", "sink", q.sinkName, "error", err)
		return nil, apperr.ConfigurationError(domain.ReasonEnvMissing, err.Error(), err)
	default:
		q.logger.Error("failed to read search logs", "sink", q.sinkName, "error", err)
		return nil, apperr.StorageError(err.Error(), err)
	}
}
