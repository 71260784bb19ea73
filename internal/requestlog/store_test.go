package requestlog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteWriterPersistsAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.db")
	w, err := NewSQLiteWriter(path)
	if err != nil {
		t.Fatalf("new sqlite writer: %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})

	now := time.Now().UTC()
	entries := []Entry{
		{ReqID: "r1", Provider: "openai", Verdict: "failure", ErrorLabel: "http_error", StatusCode: 503, DurationMS: 120, CreatedAt: now.Add(-time.Hour)},
		{ReqID: "r1", Provider: "anthropic", Verdict: "success", StatusCode: 200, DurationMS: 340, CreatedAt: now},
	}

	for _, entry := range entries {
		if err := w.Write(context.Background(), entry); err != nil {
			t.Fatalf("write request log entry: %v", err)
		}
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM provider_attempts").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 persisted attempts, got %d", count)
	}

	var verdict, errorLabel sql.NullString
	if err := w.db.QueryRow("SELECT verdict, error_label FROM provider_attempts WHERE provider = ?", "openai").Scan(&verdict, &errorLabel); err != nil {
		t.Fatalf("query openai row: %v", err)
	}
	if verdict.String != "failure" || errorLabel.String != "http_error" {
		t.Fatalf("unexpected row: verdict=%q error_label=%q", verdict.String, errorLabel.String)
	}
}

func TestNoopWriterDiscardsEntries(t *testing.T) {
	var w NoopWriter
	if err := w.Write(context.Background(), Entry{Provider: "openai"}); err != nil {
		t.Fatalf("expected noop writer never to error, got %v", err)
	}
}

func TestPostgresWriterContract(t *testing.T) {
	dsn := os.Getenv("RELAYBRIDGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set RELAYBRIDGE_TEST_POSTGRES_DSN to run Postgres requestlog integration tests")
	}

	w, err := NewPostgresWriter(dsn)
	if err != nil {
		t.Fatalf("new postgres writer: %v", err)
	}
	t.Cleanup(func() {
		_, _ = w.db.Exec("DELETE FROM provider_attempts")
		_ = w.Close()
	})

	_, _ = w.db.Exec("DELETE FROM provider_attempts")

	entry := Entry{ReqID: "pg-1", Provider: "openai", Verdict: "success", StatusCode: 200, DurationMS: 88, CreatedAt: time.Now().UTC()}
	if err := w.Write(context.Background(), entry); err != nil {
		t.Fatalf("write postgres log: %v", err)
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM provider_attempts WHERE provider = $1", "openai").Scan(&count); err != nil {
		t.Fatalf("count postgres rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 postgres row, got %d", count)
	}
}
