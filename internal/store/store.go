// Package store persists the full list of operations to a single storage
// slot and decodes it back, validating every record on the way in.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/storage"
)

// DefaultKey is the slot the operation list lives in.
const DefaultKey = "eagle_eye_operations"

// ErrCorrupt is returned by SaveOperations when the slot currently holds a
// value that is not a JSON array. Overwriting it requires WithOverwriteCorrupt.
var ErrCorrupt = errors.New("stored operation list is corrupt")

// QuotaError reports that the serialized list did not fit in the storage
// slot. Nothing was written; the caller's in-memory list is still the
// source of truth.
type QuotaError struct {
	Bytes int64 // size of the rejected payload
	Usage storage.Usage
	Err   error
}

func (e *QuotaError) Error() string {
	if e.Usage.QuotaBytes > 0 {
		return fmt.Sprintf("storage quota exceeded: operation list needs %d bytes, limit is %d", e.Bytes, e.Usage.QuotaBytes)
	}
	return fmt.Sprintf("storage quota exceeded: operation list needs %d bytes", e.Bytes)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// ValidationError reports an operation that cannot be saved.
type ValidationError struct {
	Index int
	ID    string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index, model.ShortID(e.ID), e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Quarantined is a persisted record that failed validation on load. It is
// excluded from the returned list and reported to the caller. SaveOperations
// writes it back unchanged at its original position.
type Quarantined struct {
	Index  int             `json:"index"`
	ID     string          `json:"id,omitempty"`
	Reason string          `json:"reason"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// LoadResult is the outcome of decoding the persisted list.
type LoadResult struct {
	Operations  []model.Operation `json:"operations"`
	Quarantined []Quarantined     `json:"quarantined,omitempty"`
	// Corrupt is set when the slot held something other than a JSON array.
	// Operations is then empty and the slot is left untouched.
	Corrupt       bool   `json:"corrupt,omitempty"`
	CorruptReason string `json:"corrupt_reason,omitempty"`
	Bytes         int    `json:"bytes"`
}

// Store is the persistence boundary for the operation list.
type Store struct {
	port             storage.Port
	key              string
	logger           *slog.Logger
	overwriteCorrupt bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the slot key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithOverwriteCorrupt lets SaveOperations replace a slot that does not
// hold a JSON array, and drop quarantined records instead of carrying them
// over.
func WithOverwriteCorrupt() Option {
	return func(s *Store) { s.overwriteCorrupt = true }
}

// New returns a Store persisting to port.
func New(port storage.Port, opts ...Option) *Store {
	s := &Store{
		port:   port,
		key:    DefaultKey,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key returns the slot key the store reads and writes.
func (s *Store) Key() string { return s.key }

// LoadOperations reads and decodes the persisted list. A missing slot yields
// an empty list. A slot that is not a JSON array yields an empty list with
// Corrupt set. Individual records that fail validation are quarantined.
// Only failures of the storage port itself are returned as errors.
func (s *Store) LoadOperations(ctx context.Context) (*LoadResult, error) {
	raw, ok, err := s.port.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", s.key, err)
	}
	if !ok {
		return &LoadResult{Operations: []model.Operation{}}, nil
	}
	return s.Decode([]byte(raw)), nil
}

// Decode validates and decodes a serialized operation list.
func (s *Store) Decode(raw []byte) *LoadResult {
	res := decode(raw)

	if res.Corrupt {
		s.logger.Warn("stored operation list is not a JSON array; ignoring it",
			"key", s.key, "bytes", len(raw), "error", res.CorruptReason)
		return res
	}
	for _, q := range res.Quarantined {
		s.logger.Warn("quarantined invalid operation record",
			"key", s.key, "index", q.Index, "id", q.ID, "reason", q.Reason)
	}

	s.logger.Debug("loaded operations",
		"key", s.key, "count", len(res.Operations), "quarantined", len(res.Quarantined))
	return res
}

func decode(raw []byte) *LoadResult {
	res := &LoadResult{Operations: []model.Operation{}, Bytes: len(raw)}

	if len(bytes.TrimSpace(raw)) == 0 {
		return res
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		res.Corrupt = true
		res.CorruptReason = err.Error()
		return res
	}

	schema, schemaErr := loadSchema()
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		q := Quarantined{Index: i, Raw: rec}

		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(rec, &head) == nil {
			q.ID = head.ID
		}

		op, err := decodeRecord(schema, schemaErr, rec)
		if err == nil && seen[op.ID] {
			err = fmt.Errorf("duplicate operation id %q", op.ID)
		}
		if err != nil {
			q.Reason = err.Error()
			res.Quarantined = append(res.Quarantined, q)
			continue
		}

		seen[op.ID] = true
		res.Operations = append(res.Operations, op)
	}
	return res
}

func decodeRecord(schema *recordSchema, schemaErr error, rec json.RawMessage) (model.Operation, error) {
	var op model.Operation
	if schemaErr != nil {
		return op, schemaErr
	}
	if err := schema.check(rec); err != nil {
		return op, err
	}
	if err := json.Unmarshal(rec, &op); err != nil {
		return op, fmt.Errorf("decoding record: %w", err)
	}
	op.Normalize()
	if err := op.Validate(); err != nil {
		return op, err
	}
	return op, nil
}

// Encode validates ops and serializes them as the persisted JSON array.
func Encode(ops []model.Operation) ([]byte, error) {
	out := make([]model.Operation, len(ops))
	seen := make(map[string]bool, len(ops))
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return nil, &ValidationError{Index: i, ID: op.ID, Err: err}
		}
		if seen[op.ID] {
			return nil, &ValidationError{Index: i, ID: op.ID, Err: fmt.Errorf("duplicate operation id")}
		}
		seen[op.ID] = true

		out[i] = op.Clone()
		out[i].Normalize()
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding operations: %w", err)
	}
	return data, nil
}

// SaveOperations serializes the whole list and overwrites the slot with it
// in a single write. Records the slot holds that failed validation on load
// are written back unchanged. A capacity failure is returned as
// *QuotaError; the slot keeps its previous value.
func (s *Store) SaveOperations(ctx context.Context, ops []model.Operation) error {
	data, err := Encode(ops)
	if err != nil {
		return err
	}

	if !s.overwriteCorrupt {
		held, err := s.heldRecords(ctx)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			if data, err = splice(data, held); err != nil {
				return err
			}
			s.logger.Debug("kept quarantined records", "key", s.key, "count", len(held))
		}
	}

	if err := s.port.Set(ctx, s.key, string(data)); err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			qe := &QuotaError{Bytes: int64(len(data)), Err: err}
			if usage, uerr := s.port.Usage(ctx); uerr == nil {
				qe.Usage = usage
			}
			s.logger.Warn("operation list rejected by storage quota",
				"key", s.key, "bytes", qe.Bytes, "quota", qe.Usage.QuotaBytes)
			return qe
		}
		return fmt.Errorf("writing %q: %w", s.key, err)
	}

	s.logger.Debug("saved operations", "key", s.key, "count", len(ops), "bytes", len(data))
	return nil
}

// heldRecords returns the records currently in the slot that would be
// quarantined on load. It fails with ErrCorrupt when the slot is not a JSON
// array at all.
func (s *Store) heldRecords(ctx context.Context) ([]Quarantined, error) {
	raw, ok, err := s.port.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", s.key, err)
	}
	if !ok {
		return nil, nil
	}
	res := decode([]byte(raw))
	if res.Corrupt {
		return nil, fmt.Errorf("%w: refusing to overwrite it (%s)", ErrCorrupt, res.CorruptReason)
	}
	return res.Quarantined, nil
}

// splice inserts held records into the encoded list at their original
// indexes, clamped to the end of the list.
func splice(data []byte, held []Quarantined) ([]byte, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("re-reading encoded operations: %w", err)
	}
	for _, q := range held {
		i := min(q.Index, len(records))
		records = append(records, nil)
		copy(records[i+1:], records[i:])
		records[i] = q.Raw
	}
	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding operations: %w", err)
	}
	return out, nil
}

// Raw returns the slot's current value exactly as stored.
func (s *Store) Raw(ctx context.Context) (string, bool, error) {
	return s.port.Get(ctx, s.key)
}

// Usage reports the storage port's consumption against its quota.
func (s *Store) Usage(ctx context.Context) (storage.Usage, error) {
	return s.port.Usage(ctx)
}
