package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/V4T54L/docsearch/internal/domain"
)

// MockLogStore is a mock implementation of domain.SearchLogStore for testing.
type MockLogStore struct {
	mu           sync.Mutex
	Appended     []domain.SearchLogEvent
	ListResult   []domain.SearchLogEvent
	LastFilter   domain.LogFilter
	AppendErr    error
	ListErr      error
	AppendCalled chan struct{}
}

func (m *MockLogStore) Append(ctx context.Context, event domain.SearchLogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendCalled != nil {
		defer func() { m.AppendCalled <- struct{}{} }()
	}
	if m.AppendErr != nil {
		return m.AppendErr
	}
	event.Timestamp = time.Now().UTC()
	m.Appended = append(m.Appended, event)
	return nil
}

func (m *MockLogStore) List(ctx context.Context, filter domain.LogFilter) ([]domain.SearchLogEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastFilter = filter
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.ListResult, nil
}

// Events returns a copy of the appended events.
func (m *MockLogStore) Events() []domain.SearchLogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SearchLogEvent(nil), m.Appended...)
}

// MockVectorSearcher is a mock implementation of domain.VectorSearcher.
type MockVectorSearcher struct {
	mu           sync.Mutex
	Unconfigured bool
	Chunks       []domain.VectorChunk
	Err          error
	Queries      []string
}

func (m *MockVectorSearcher) Configured() bool {
	return !m.Unconfigured
}

func (m *MockVectorSearcher) Search(ctx context.Context, query string) ([]domain.VectorChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Chunks, nil
}

// Calls returns the number of provider calls made.
func (m *MockVectorSearcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// MockLexicalSearcher is a mock implementation of domain.LexicalSearcher.
type MockLexicalSearcher struct {
	mu      sync.Mutex
	Hits    []json.RawMessage
	Err     error
	Queries []string
}

func (m *MockLexicalSearcher) Search(ctx context.Context, query string) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Hits, nil
}
