package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/V4T54L/docsearch/internal/domain"
)

const (
	fileSuffix  = ".jsonl"
	filePerm    = 0644
	dirPerm     = 0755
	maxLineSize = 1 << 20
)

// SessionRepository stores search log events as one append-only JSON-lines
// file per session: <dir>/<session_id>.jsonl.
type SessionRepository struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionRepository creates a new SessionRepository rooted at dir.
// The directory is created on first append if it does not exist.
func NewSessionRepository(dir string, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		dir:    dir,
		logger: logger.With("component", "jsonl_session_logs"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Append writes the event as a single newline-terminated line to the session's file.
// The line is written with one O_APPEND write so concurrent appends to the same
// session never interleave.
func (r *SessionRepository) Append(ctx context.Context, event domain.SearchLogEvent) error {
	path, err := r.sessionPath(event.SessionID)
	if err != nil {
		return err
	}
	event.Timestamp = r.now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal search log event: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(r.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", r.dir, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open session log %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to session log %s: %w", path, err)
	}
	return f.Close()
}

// List reads every session file and returns matching events newest first.
// Lines that fail to decode are skipped.
func (r *SessionRepository) List(ctx context.Context, filter domain.LogFilter) ([]domain.SearchLogEvent, error) {
	files, err := r.sessionFiles()
	if err != nil {
		return nil, err
	}

	var events []domain.SearchLogEvent
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileEvents, err := r.readFile(path, filter.Provider)
		if err != nil {
			return nil, err
		}
		events = append(events, fileEvents...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[:filter.Limit]
	}
	return events, nil
}

func (r *SessionRepository) readFile(path, provider string) ([]domain.SearchLogEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log %s: %w", path, err)
	}
	defer file.Close()

	var events []domain.SearchLogEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		var event domain.SearchLogEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			r.logger.Warn("Failed to unmarshal event from session log, skipping", "error", err, "path", path)
			continue
		}
		if provider != "" && event.Provider != provider {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning session log %s: %w", path, err)
	}
	return events, nil
}

func (r *SessionRepository) sessionFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read log directory: %w", domain.ErrStoreUnavailable, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), fileSuffix) {
			files = append(files, filepath.Join(r.dir, entry.Name()))
		}
	}
	return files, nil
}

func (r *SessionRepository) sessionPath(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("invalid session id %q for file log", sessionID)
	}
	return filepath.Join(r.dir, sessionID+fileSuffix), nil
}
