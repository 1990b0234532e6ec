package db

import (
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	t.Run("creates the database and applies migrations", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

		database, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer database.Close()

		if database.Path() != path {
			t.Errorf("Path() = %q, want %q", database.Path(), path)
		}

		var count int
		row := database.Conn().QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'documents'")
		if err := row.Scan(&count); err != nil {
			t.Fatalf("querying schema: %v", err)
		}
		if count != 1 {
			t.Error("documents table not created by migrations")
		}
	})

	t.Run("reopening an existing database succeeds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		first, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, err := first.ExecContext(t.Context(),
			"INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)",
			"probe", "{}", 0); err != nil {
			t.Fatalf("inserting probe row: %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		second, err := Open(path)
		if err != nil {
			t.Fatalf("reopening: %v", err)
		}
		defer second.Close()

		var value string
		row := second.QueryRowContext(t.Context(),
			"SELECT value FROM documents WHERE key = ?", "probe")
		if err := row.Scan(&value); err != nil {
			t.Fatalf("reading probe row: %v", err)
		}
		if value != "{}" {
			t.Errorf("value = %q, want {}", value)
		}
	})
}
