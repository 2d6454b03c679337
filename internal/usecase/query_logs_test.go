package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/domain/mocks"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 500},
		{"0", 500},
		{"abc", 500},
		{"NaN", 500},
		{"50", 50},
		{" 75 ", 75},
		{"50000", 2000},
		{"2000", 2000},
		{"1e400", 2000},
		{"-5", 1},
		{"1", 1},
		{"12.9", 12},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			if got := ParseLimit(tt.raw); got != tt.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLogsQuery_List(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Passes filter and clamped limit", func(t *testing.T) {
		store := &mocks.MockLogStore{ListResult: []domain.SearchLogEvent{{Query: "a"}}}
		q := NewLogsQuery(store, "postgres", logger)

		events, err := q.List(context.Background(), domain.ProviderVector, "50000")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 {
			t.Errorf("expected 1 event, got %d", len(events))
		}
		if store.LastFilter.Limit != MaxLogLimit || store.LastFilter.Provider != domain.ProviderVector {
			t.Errorf("unexpected filter: %+v", store.LastFilter)
		}
	})

	t.Run("Empty result is an empty list", func(t *testing.T) {
		q := NewLogsQuery(&mocks.MockLogStore{}, "postgres", logger)
		events, err := q.List(context.Background(), "", "")
		if err != nil || events == nil || len(events) != 0 {
			t.Errorf("expected empty non-nil list, got %#v, %v", events, err)
		}
	})

	tests := []struct {
		name        string
		listErr     error
		wantKind    apperr.Kind
		wantMessage string
	}{
		{"Unconfigured", domain.ErrStoreNotConfigured, apperr.KindConfiguration, "DATABASE_URL missing"},
		{"Unreachable", fmt.Errorf("query search logs: %w: dial tcp: refused", domain.ErrStoreUnavailable), apperr.KindConfiguration, "query search logs: log store is unavailable: dial tcp: refused"},
		{"Other failure", errors.New("syntax error at or near"), apperr.KindStorage, "syntax error at or near"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewLogsQuery(&mocks.MockLogStore{ListErr: tt.listErr}, "postgres", logger)
			_, err := q.List(context.Background(), "", "")
			appErr, ok := apperr.As(err)
			if !ok {
				t.Fatalf("expected app error, got %v", err)
			}
			if appErr.Kind != tt.wantKind || appErr.Message != tt.wantMessage {
				t.Errorf("got %s %q, want %s %q", appErr.Kind, appErr.Message, tt.wantKind, tt.wantMessage)
			}
			if appErr.HTTPStatus() != 500 {
				t.Errorf("expected 500, got %d", appErr.HTTPStatus())
			}
		})
	}
}
