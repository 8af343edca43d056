// Package storage defines the key-value slot the record store persists to,
// plus in-memory and file-backed implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// DefaultQuota is the slot budget used when none is configured.
const DefaultQuota int64 = 5 << 20

// ErrQuotaExceeded is returned by Set when storing the value would exceed
// the port's capacity. The previous value is left untouched.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Port is a named key-value slot store. Implementations must make Set
// atomic: after a failed Set the previous value is still readable.
type Port interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Usage(ctx context.Context) (Usage, error)
}

// Usage reports how many bytes a port currently holds against its quota.
// A Quota of zero means unbounded.
type Usage struct {
	UsedBytes  int64 `json:"used_bytes"`
	QuotaBytes int64 `json:"quota_bytes"`
}

// Remaining returns the number of bytes that can still be stored, or -1 when
// the port is unbounded.
func (u Usage) Remaining() int64 {
	if u.QuotaBytes <= 0 {
		return -1
	}
	return max(u.QuotaBytes-u.UsedBytes, 0)
}

// QuotaCheck returns an error wrapping ErrQuotaExceeded when replacing a
// value of oldSize bytes with one of newSize bytes would push used past
// quota. Keys count toward usage along with values.
func QuotaCheck(quota, used, oldSize, newSize int64) error {
	if quota <= 0 {
		return nil
	}
	after := used - oldSize + newSize
	if after > quota {
		return fmt.Errorf("%w: need %d bytes, limit %d", ErrQuotaExceeded, after, quota)
	}
	return nil
}
