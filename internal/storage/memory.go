package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Port. It is what tests inject in place of a real
// backend.
type Memory struct {
	mu     sync.Mutex
	quota  int64
	values map[string]string
	used   int64

	// SetErr, when non-nil, is returned by every Set call. Tests use it to
	// simulate backend failures that are not quota related.
	SetErr error
}

// NewMemory returns an empty Memory port with the given quota in bytes.
// A quota of zero or less means unbounded.
func NewMemory(quota int64) *Memory {
	return &Memory{quota: quota, values: make(map[string]string)}
}

// Get implements Port.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Port.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}

	var oldSize int64
	if old, ok := m.values[key]; ok {
		oldSize = entrySize(key, old)
	}
	newSize := entrySize(key, value)
	if err := QuotaCheck(m.quota, m.used, oldSize, newSize); err != nil {
		return err
	}

	m.values[key] = value
	m.used += newSize - oldSize
	return nil
}

// Remove implements Port.
func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.values[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.values, key)
	}
	return nil
}

// Usage implements Port.
func (m *Memory) Usage(ctx context.Context) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Usage{UsedBytes: m.used, QuotaBytes: m.quota}, nil
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
