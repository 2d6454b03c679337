package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/V4T54L/docsearch/internal/domain"
)

const searchLogsTableName = "search_logs"

const schema = `
CREATE TABLE IF NOT EXISTS search_logs (
	id           BIGSERIAL PRIMARY KEY,
	event        TEXT        NOT NULL,
	status       TEXT        NOT NULL,
	provider     TEXT        NOT NULL,
	session_id   TEXT        NOT NULL,
	query        TEXT        NOT NULL DEFAULT '',
	result_count INTEGER     NOT NULL DEFAULT 0,
	duration_ms  BIGINT      NOT NULL DEFAULT 0,
	timestamp    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	reason       TEXT,
	error        TEXT
);
CREATE INDEX IF NOT EXISTS search_logs_timestamp_idx ON search_logs (timestamp DESC);
CREATE INDEX IF NOT EXISTS search_logs_provider_timestamp_idx ON search_logs (provider, timestamp DESC);
`

// SearchLogRepository implements domain.SearchLogStore on a search_logs table.
// A repository created with a nil *sql.DB reports domain.ErrStoreNotConfigured.
type SearchLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSearchLogRepository creates a new PostgreSQL search log repository.
func NewSearchLogRepository(db *sql.DB, logger *slog.Logger) *SearchLogRepository {
	return &SearchLogRepository{
		db:     db,
		logger: logger.With("component", "postgres_search_logs"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the search_logs table and its indexes if they do not exist.
func (r *SearchLogRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return domain.ErrStoreNotConfigured
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return classify("create search_logs schema", err)
	}
	r.logger.Info("search_logs schema ready")
	return nil
}

// Append inserts one event row inside a transaction. The timestamp is assigned here.
func (r *SearchLogRepository) Append(ctx context.Context, event domain.SearchLogEvent) error {
	if r.db == nil {
		return domain.ErrStoreNotConfigured
	}
	event.Timestamp = r.now()

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	_, err = txn.ExecContext(ctx, `
		INSERT INTO `+searchLogsTableName+` (
			event, status, provider, session_id, query, result_count, duration_ms, timestamp, reason, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.Event,
		string(event.Status),
		event.Provider,
		event.SessionID,
		event.Query,
		event.ResultCount,
		event.DurationMs,
		event.Timestamp,
		nullString(event.Reason),
		nullString(event.Error),
	)
	if err != nil {
		return classify("insert search log", err)
	}

	if err := txn.Commit(); err != nil {
		return classify("commit search log", err)
	}
	return nil
}

// List returns events newest first, optionally filtered by provider.
func (r *SearchLogRepository) List(ctx context.Context, filter domain.LogFilter) ([]domain.SearchLogEvent, error) {
	if r.db == nil {
		return nil, domain.ErrStoreNotConfigured
	}

	query, args := buildListQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query search logs", err)
	}
	defer rows.Close()

	events := make([]domain.SearchLogEvent, 0, filter.Limit)
	for rows.Next() {
		var (
			e      domain.SearchLogEvent
			status string
			reason sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&e.Event, &status, &e.Provider, &e.SessionID, &e.Query,
			&e.ResultCount, &e.DurationMs, &e.Timestamp, &reason, &errMsg); err != nil {
			return nil, fmt.Errorf("scan search log row: %w", err)
		}
		e.Status = domain.Status(status)
		e.Reason = reason.String
		e.Error = errMsg.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate search logs", err)
	}
	return events, nil
}

func buildListQuery(filter domain.LogFilter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`SELECT event, status, provider, session_id, query, result_count, duration_ms, timestamp, reason, error FROM `)
	b.WriteString(searchLogsTableName)
	if filter.Provider != "" {
		args = append(args, filter.Provider)
		fmt.Fprintf(&b, " WHERE provider = $%d", len(args))
	}
	args = append(args, filter.Limit)
	fmt.Fprintf(&b, " ORDER BY timestamp DESC LIMIT $%d", len(args))
	return b.String(), args
}

// classify wraps connection-level failures with domain.ErrStoreUnavailable.
func classify(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "28", "3D": // connection exception, invalid authorization, invalid catalog
			return true
		}
		return pqErr.Code == "42P01" // undefined_table: schema never created
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
