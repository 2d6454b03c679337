package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/docsearch/internal/domain"
)

const (
	// StreamKey is the Redis stream holding search log events.
	StreamKey = "search_events"

	payloadField = "payload"
	pageSize     = 500
)

// LogRepository implements domain.SearchLogStore on a Redis stream.
// Each event is one XADD entry whose payload field holds the JSON-encoded event.
type LogRepository struct {
	client *redis.Client
	logger *slog.Logger
	stream string
	now    func() time.Time
}

// NewLogRepository creates a new Redis-backed LogRepository.
// A nil client yields a repository that reports domain.ErrStoreNotConfigured.
func NewLogRepository(client *redis.Client, logger *slog.Logger) *LogRepository {
	return &LogRepository{
		client: client,
		logger: logger.With("component", "redis_search_logs"),
		stream: StreamKey,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Append adds the event to the stream.
func (r *LogRepository) Append(ctx context.Context, event domain.SearchLogEvent) error {
	if r.client == nil {
		return domain.ErrStoreNotConfigured
	}
	event.Timestamp = r.now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal search log event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{payloadField: payload},
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return classify("failed to XADD to redis stream", err)
	}
	return nil
}

// List walks the stream from the newest entry backwards, one page at a time,
// until the limit is reached or the stream is exhausted.
func (r *LogRepository) List(ctx context.Context, filter domain.LogFilter) ([]domain.SearchLogEvent, error) {
	if r.client == nil {
		return nil, domain.ErrStoreNotConfigured
	}

	events := make([]domain.SearchLogEvent, 0, filter.Limit)
	end := "+"
	for len(events) < filter.Limit {
		messages, err := r.client.XRevRangeN(ctx, r.stream, end, "-", pageSize).Result()
		if err != nil {
			return nil, classify("failed to XREVRANGE redis stream", err)
		}
		for _, msg := range messages {
			event, ok := r.decode(msg)
			if !ok || (filter.Provider != "" && event.Provider != filter.Provider) {
				continue
			}
			events = append(events, event)
			if len(events) == filter.Limit {
				break
			}
		}
		if len(messages) < pageSize {
			break
		}
		// Exclusive range start, so the last message of this page is not read again.
		end = "(" + messages[len(messages)-1].ID
	}
	return events, nil
}

func (r *LogRepository) decode(msg redis.XMessage) (domain.SearchLogEvent, bool) {
	var event domain.SearchLogEvent
	payload, ok := msg.Values[payloadField].(string)
	if !ok {
		r.logger.Warn("Invalid message format in stream, skipping", "message_id", msg.ID)
		return event, false
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warn("Failed to unmarshal search event from stream, skipping", "message_id", msg.ID, "error", err)
		return event, false
	}
	return event, true
}

func classify(op string, err error) error {
	if isNetworkError(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed)
}
