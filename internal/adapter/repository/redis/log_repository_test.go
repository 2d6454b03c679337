package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/docsearch/internal/domain"
)

func TestUnconfiguredRepository(t *testing.T) {
	repo := NewLogRepository(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := repo.Append(context.Background(), domain.SearchLogEvent{}); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Errorf("Append: expected ErrStoreNotConfigured, got %v", err)
	}
	if _, err := repo.List(context.Background(), domain.LogFilter{Limit: 1}); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Errorf("List: expected ErrStoreNotConfigured, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	if err := classify("op", redis.ErrClosed); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected closed client to be unavailable, got %v", err)
	}
	if err := classify("op", errors.New("WRONGTYPE")); errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected command error to stay generic, got %v", err)
	}
}

// TestLogRepository_Redis runs against a real server when SEARCH_LOGS_TEST_REDIS
// is set to a redis:// URL.
func TestLogRepository_Redis(t *testing.T) {
	url := os.Getenv("SEARCH_LOGS_TEST_REDIS")
	if url == "" {
		t.Skip("SEARCH_LOGS_TEST_REDIS not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	repo := NewLogRepository(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo.stream = "search_events_test_" + uuid.NewString()
	defer client.Del(ctx, repo.stream)

	session := uuid.NewString()
	for i := 0; i < pageSize+5; i++ {
		provider := domain.ProviderLexical
		if i%2 == 0 {
			provider = domain.ProviderVector
		}
		event := domain.NewSearchLogEvent(provider, session, fmt.Sprintf("q%d", i), i, 0)
		if err := repo.Append(ctx, event); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	events, err := repo.List(ctx, domain.LogFilter{Provider: domain.ProviderLexical, Limit: 300})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 252 {
		t.Fatalf("expected all 252 lexical events across pages, got %d", len(events))
	}
	if events[0].Query != fmt.Sprintf("q%d", pageSize+3) {
		t.Errorf("expected newest lexical event first, got %q", events[0].Query)
	}
}
