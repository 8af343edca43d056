package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ALT-F4-LLC/eagleeye/internal/storage"
)

func mustOpen(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustInit(t *testing.T) *sql.DB {
	t.Helper()
	db := mustOpen(t)
	if err := Initialize(db); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return db
}

func TestOpenSetsWALMode(t *testing.T) {
	db := mustOpen(t)

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("querying journal_mode: %v", err)
	}
	// In-memory databases may report "memory" instead of "wal" since WAL
	// requires a file. Accept both.
	if mode != "wal" && mode != "memory" {
		t.Errorf("journal_mode = %q, want wal or memory", mode)
	}
}

func TestOpenSetsBusyTimeout(t *testing.T) {
	db := mustOpen(t)

	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("querying busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestInitializeCreatesAllTables(t *testing.T) {
	db := mustInit(t)

	for _, table := range []string{"meta", "slots", "slot_backups"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := mustInit(t)

	if err := Initialize(db); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema_version = %d after double init, want %d", v, currentSchemaVersion)
	}
}

func TestMigrateAtCurrentVersionIsNoop(t *testing.T) {
	db := mustInit(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema_version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestMigrateReportsMissingStep(t *testing.T) {
	db := mustInit(t)
	if _, err := db.Exec(`UPDATE meta SET value = '0' WHERE key = 'schema_version'`); err != nil {
		t.Fatalf("lowering version: %v", err)
	}

	err := Migrate(db)
	if err == nil || !strings.Contains(err.Error(), "missing migration for version 1") {
		t.Errorf("Migrate error = %v, want missing migration for version 1", err)
	}
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	db := mustInit(t)
	if _, err := db.Exec(`UPDATE meta SET value = '99' WHERE key = 'schema_version'`); err != nil {
		t.Fatalf("bumping version: %v", err)
	}
	if err := Migrate(db); err == nil {
		t.Error("expected error for newer schema version")
	}
}

func TestOpenReadyOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operations.db")
	conn, err := OpenReady(path)
	if err != nil {
		t.Fatalf("OpenReady: %v", err)
	}
	defer conn.Close()

	v, err := SchemaVersion(conn)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema_version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestSlotsGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewSlots(mustInit(t), 0)

	if _, ok, err := s.Get(ctx, "ops"); err != nil || ok {
		t.Fatalf("Get on empty = ok %v, err %v", ok, err)
	}

	if err := s.Set(ctx, "ops", "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "ops", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok, err := s.Get(ctx, "ops")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if v != `[{"id":"1"}]` {
		t.Errorf("value = %q", v)
	}

	usage, err := s.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if want := int64(len("ops") + len(v)); usage.UsedBytes != want {
		t.Errorf("UsedBytes = %d, want %d", usage.UsedBytes, want)
	}
}

func TestSlotsBackupKeepsPreviousValue(t *testing.T) {
	ctx := context.Background()
	s := NewSlots(mustInit(t), 0)

	if _, _, err := s.Backup(ctx, "ops"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any write, got %v", err)
	}

	for _, v := range []string{"first", "second", "second"} {
		if err := s.Set(ctx, "ops", v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}

	prev, savedAt, err := s.Backup(ctx, "ops")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if prev != "first" {
		t.Errorf("backup = %q, want %q (unchanged writes must not rotate it)", prev, "first")
	}
	if savedAt.IsZero() {
		t.Error("savedAt should be set")
	}
}

func TestSlotsQuotaRejectsWrite(t *testing.T) {
	ctx := context.Background()
	s := NewSlots(mustInit(t), 20)

	if err := s.Set(ctx, "ops", "small"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	err := s.Set(ctx, "ops", strings.Repeat("x", 100))
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	v, _, err := s.Get(ctx, "ops")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "small" {
		t.Errorf("value after rejected write = %q, want %q", v, "small")
	}
}

func TestSlotsQuotaCountsMultibyteText(t *testing.T) {
	ctx := context.Background()
	// "ops" (3) + "ção" (5 bytes in UTF-8) = 8
	s := NewSlots(mustInit(t), 8)

	if err := s.Set(ctx, "ops", "ção"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	usage, err := s.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.UsedBytes != 8 {
		t.Errorf("UsedBytes = %d, want 8", usage.UsedBytes)
	}
	if err := s.Set(ctx, "ops", "çãoX"); !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestSlotsRemove(t *testing.T) {
	ctx := context.Background()
	s := NewSlots(mustInit(t), 0)

	if err := s.Set(ctx, "ops", "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Remove(ctx, "ops"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "ops"); ok {
		t.Error("slot still present after Remove")
	}
}
