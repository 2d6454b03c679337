package domain

import (
	"context"
	"encoding/json"
)

// SearchLogSink persists search log events.
// Implementations assign the event timestamp at write time and never mutate stored events.
type SearchLogSink interface {
	// Append durably stores a single event. A failed append leaves no partial record.
	Append(ctx context.Context, event SearchLogEvent) error
}

// SearchLogReader reads back stored search log events, most recent first.
type SearchLogReader interface {
	List(ctx context.Context, filter LogFilter) ([]SearchLogEvent, error)
}

// SearchLogStore is a sink that can also be read back.
type SearchLogStore interface {
	SearchLogSink
	SearchLogReader
}

// LexicalSearcher forwards a query to a hosted text-search index.
// Hits are returned in the shape the search dialog already understands.
type LexicalSearcher interface {
	Search(ctx context.Context, query string) ([]json.RawMessage, error)
}

// VectorSearcher forwards a query to a hosted vector store.
type VectorSearcher interface {
	// Configured reports whether the credentials and store identifier are present.
	Configured() bool
	Search(ctx context.Context, query string) ([]VectorChunk, error)
}
