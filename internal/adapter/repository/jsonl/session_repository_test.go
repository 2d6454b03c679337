package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/docsearch/internal/domain"
)

func setupTestRepo(t *testing.T) (*SessionRepository, string) {
	t.Helper()
	// A nested path that does not exist yet exercises directory creation.
	dir := filepath.Join(t.TempDir(), "log")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionRepository(dir, logger), dir
}

func readLines(t *testing.T, path string) []domain.SearchLogEvent {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var events []domain.SearchLogEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e domain.SearchLogEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("corrupt line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestSessionRepository_AppendCreatesSessionFile(t *testing.T) {
	repo, dir := setupTestRepo(t)
	session := uuid.NewString()

	events := []domain.SearchLogEvent{
		domain.NewSearchLogEvent(domain.ProviderLexical, session, "install", 3, 12*time.Millisecond),
		domain.NewSearchLogEvent(domain.ProviderLexical, session, "config", 0, 4*time.Millisecond).
			Failed(domain.ReasonException, fmt.Errorf("index not found")),
	}
	for _, e := range events {
		if err := repo.Append(context.Background(), e); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
	}

	got := readLines(t, filepath.Join(dir, session+".jsonl"))
	if len(got) != len(events) {
		t.Fatalf("expected %d lines, got %d", len(events), len(got))
	}
	for i, e := range got {
		if e.Query != events[i].Query || e.SessionID != session {
			t.Errorf("line %d mismatch: got %+v", i, e)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("line %d: expected timestamp to be assigned", i)
		}
	}
	if got[1].Status != domain.StatusError || got[1].Error != "index not found" {
		t.Errorf("expected error record, got %+v", got[1])
	}
	if got[0].Error != "" {
		t.Errorf("expected no error field on ok record, got %q", got[0].Error)
	}
}

func TestSessionRepository_ConcurrentAppends(t *testing.T) {
	repo, dir := setupTestRepo(t)
	session := uuid.NewString()

	const writers, perWriter = 16, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				q := fmt.Sprintf("writer-%d-query-%d", w, i)
				if err := repo.Append(context.Background(), domain.NewSearchLogEvent(domain.ProviderLexical, session, q, i, 0)); err != nil {
					t.Errorf("append failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	got := readLines(t, filepath.Join(dir, session+".jsonl"))
	if len(got) != writers*perWriter {
		t.Fatalf("expected %d intact lines, got %d", writers*perWriter, len(got))
	}
}

func TestSessionRepository_RejectsPathLikeSessionIDs(t *testing.T) {
	repo, _ := setupTestRepo(t)

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		err := repo.Append(context.Background(), domain.NewSearchLogEvent(domain.ProviderLexical, id, "q", 0, 0))
		if err == nil {
			t.Errorf("expected error for session id %q", id)
		}
	}
}

func TestSessionRepository_List(t *testing.T) {
	repo, dir := setupTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	s1, s2 := uuid.NewString(), uuid.NewString()
	appends := []domain.SearchLogEvent{
		domain.NewSearchLogEvent(domain.ProviderLexical, s1, "a", 1, 0),
		domain.NewSearchLogEvent(domain.ProviderVector, s2, "b", 2, 0),
		domain.NewSearchLogEvent(domain.ProviderLexical, s2, "c", 3, 0),
		domain.NewSearchLogEvent(domain.ProviderLexical, s1, "d", 4, 0),
	}
	for _, e := range appends {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	// A corrupt line is skipped rather than failing the read.
	f, err := os.OpenFile(filepath.Join(dir, s1+".jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open session file: %v", err)
	}
	f.WriteString("{not json\n")
	f.Close()

	t.Run("all providers newest first", func(t *testing.T) {
		events, err := repo.List(ctx, domain.LogFilter{Limit: 10})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		want := []string{"d", "c", "b", "a"}
		if len(events) != len(want) {
			t.Fatalf("expected %d events, got %d", len(want), len(events))
		}
		for i, q := range want {
			if events[i].Query != q {
				t.Errorf("position %d: got %q, want %q", i, events[i].Query, q)
			}
		}
	})

	t.Run("provider filter and limit", func(t *testing.T) {
		events, err := repo.List(ctx, domain.LogFilter{Provider: domain.ProviderLexical, Limit: 2})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(events) != 2 || events[0].Query != "d" || events[1].Query != "c" {
			t.Errorf("unexpected events: %+v", events)
		}
	})
}

func TestSessionRepository_ListMissingDirectory(t *testing.T) {
	repo, _ := setupTestRepo(t)

	events, err := repo.List(context.Background(), domain.LogFilter{Limit: 10})
	if err != nil {
		t.Fatalf("expected no error for a directory that was never created, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
