package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/eagleeye/internal/storage"
)

var _ storage.Port = (*Slots)(nil)

// Slots is a storage.Port backed by the slots table. The quota counts the
// key and value bytes of every slot.
type Slots struct {
	db    *sql.DB
	quota int64
}

// NewSlots returns a Slots port over an initialized database. A quota of
// zero or less means unbounded.
func NewSlots(db *sql.DB, quota int64) *Slots {
	return &Slots{db: db, quota: quota}
}

// Get implements storage.Port.
func (s *Slots) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements storage.Port. The quota check, the backup of the previous
// value and the write share one transaction, so a rejected write leaves the
// slot exactly as it was.
func (s *Slots) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	used, err := usedBytes(ctx, tx)
	if err != nil {
		return err
	}

	var (
		old    string
		hasOld = true
	)
	if err := tx.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&old); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading slot %q: %w", key, err)
		}
		hasOld = false
	}

	var oldSize int64
	if hasOld {
		oldSize = int64(len(key) + len(old))
	}
	if err := storage.QuotaCheck(s.quota, used, oldSize, int64(len(key)+len(value))); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if hasOld && old != value {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO slot_backups (key, value, saved_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`,
			key, old, now,
		); err != nil {
			return fmt.Errorf("backing up slot %q: %w", key, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	); err != nil {
		return fmt.Errorf("writing slot %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Remove implements storage.Port.
func (s *Slots) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing slot %q: %w", key, err)
	}
	return nil
}

// Usage implements storage.Port.
func (s *Slots) Usage(ctx context.Context) (storage.Usage, error) {
	used, err := usedBytes(ctx, s.db)
	if err != nil {
		return storage.Usage{}, err
	}
	return storage.Usage{UsedBytes: used, QuotaBytes: s.quota}, nil
}

// Backup returns the value the slot held before its most recent change.
func (s *Slots) Backup(ctx context.Context, key string) (value string, savedAt time.Time, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT value, saved_at FROM slot_backups WHERE key = ?`, key,
	).Scan(&value, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, ErrNotFound
		}
		return "", time.Time{}, fmt.Errorf("reading backup for %q: %w", key, err)
	}

	savedAt, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parsing saved_at: %w", err)
	}
	return value, savedAt, nil
}

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func usedBytes(ctx context.Context, q queryRower) (int64, error) {
	var used int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0) FROM slots`,
	).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("measuring slot usage: %w", err)
	}
	return used, nil
}
