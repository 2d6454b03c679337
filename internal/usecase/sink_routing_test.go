package usecase

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/V4T54L/docsearch/internal/adapter/metrics"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/domain/mocks"
)

func TestRouteSinks(t *testing.T) {
	m := metrics.NewSearchMetricsWith(prometheus.NewRegistry())
	stores := map[string]domain.SearchLogStore{
		"postgres": &mocks.MockLogStore{},
		"jsonl":    &mocks.MockLogStore{},
		"redis":    &mocks.MockLogStore{},
	}

	tests := []struct {
		sink                          string
		lexical, vector, client, read string
	}{
		{"split", "jsonl", "postgres", "postgres", "postgres"},
		{"postgres", "postgres", "postgres", "postgres", "postgres"},
		{"jsonl", "jsonl", "jsonl", "jsonl", "jsonl"},
		{"redis", "redis", "redis", "redis", "redis"},
	}
	for _, tt := range tests {
		t.Run(tt.sink, func(t *testing.T) {
			routing, reader, err := RouteSinks(tt.sink, stores, m)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if routing.Lexical.Name() != tt.lexical || routing.Vector.Name() != tt.vector || routing.Client.Name() != tt.client {
				t.Errorf("unexpected routing: %s/%s/%s", routing.Lexical.Name(), routing.Vector.Name(), routing.Client.Name())
			}
			if reader.Name != tt.read || reader.Store != stores[tt.read] {
				t.Errorf("unexpected reader %s", reader.Name)
			}
		})
	}

	if _, _, err := RouteSinks("kafka", stores, m); err == nil {
		t.Error("expected error for unknown sink")
	}
	if _, _, err := RouteSinks("redis", map[string]domain.SearchLogStore{}, m); err == nil {
		t.Error("expected error for missing store")
	}
}
