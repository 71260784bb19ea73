// Package requestlog persists a durable, queryable audit trail of every
// per-provider attempt made by the forward engine: which provider, what
// verdict, which error label if any, and how long it took. This
// supplements the JSON log sink with a store that can answer "which
// providers failed, and when" without reprocessing log files.
package requestlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Entry records the outcome of one attempt against one provider.
type Entry struct {
	ReqID      string
	Provider   string
	Verdict    string // "success" or "failure"
	ErrorLabel string // "", "timeout", "connection_error", "http_error", "unknown"
	StatusCode int
	DurationMS int64
	CreatedAt  time.Time
}

// Writer persists attempt entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter discards every entry. Used when the request log driver is
// "none".
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLWriter persists entries to SQLite or Postgres, chosen at construction.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteWriter opens (and creates if absent) a SQLite-backed audit log.
func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "relaybridge-attempts.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite request log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// NewPostgresWriter opens a Postgres-backed audit log at the given DSN.
func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres request log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s request log writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS provider_attempts (
	id INTEGER PRIMARY KEY,
	req_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	verdict TEXT NOT NULL,
	error_label TEXT,
	status_code INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS provider_attempts (
	id BIGSERIAL PRIMARY KEY,
	req_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	verdict TEXT NOT NULL,
	error_label TEXT,
	status_code INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize request log schema: %w", err)
	}
	return nil
}

func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO provider_attempts(req_id, provider, verdict, error_label, status_code, duration_ms, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO provider_attempts(req_id, provider, verdict, error_label, status_code, duration_ms, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.ReqID,
		entry.Provider,
		entry.Verdict,
		entry.ErrorLabel,
		entry.StatusCode,
		entry.DurationMS,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write request log: %w", err)
	}
	return nil
}

func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
