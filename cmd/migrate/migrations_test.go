package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

// migrationsPath returns db/migrations of the repository; this file lives in cmd/migrate/.
func migrationsPath(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations"))
}

func TestCollectMigrations(t *testing.T) {
	migrations, err := goose.CollectMigrations(migrationsPath(t), 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
	if migrations[0].Version != 1 {
		t.Errorf("expected first migration version 1, got %d", migrations[0].Version)
	}
}

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := migrationsPath(t)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		if !strings.Contains(s, "-- +goose Up") {
			t.Errorf("%s missing '-- +goose Up'", e.Name())
		}
		if !strings.Contains(s, "-- +goose Down") {
			t.Errorf("%s missing '-- +goose Down'", e.Name())
		}
	}
}

func TestBooksMigration_MatchesStorageQueries(t *testing.T) {
	b, err := os.ReadFile(filepath.Join(migrationsPath(t), "00001_create_books.sql"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	// columns used by the PostgreSQL book store
	for _, col := range []string{"id ", "doc ", "created_at "} {
		if !strings.Contains(string(b), col) {
			t.Errorf("books table is missing column %q", strings.TrimSpace(col))
		}
	}
}
