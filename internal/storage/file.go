package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const slotExt = ".json"

// File stores each key as its own file inside a directory. Writes go to a
// temp file that is renamed over the slot, so a failed write never leaves a
// truncated value behind.
type File struct {
	dir   string
	quota int64
}

// NewFile returns a File port rooted at dir, creating the directory if
// needed. A quota of zero or less means unbounded.
func NewFile(dir string, quota int64) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating slot directory: %w", err)
	}
	return &File{dir: dir, quota: quota}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+slotExt)
}

// Get implements Port.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading slot %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Port.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	usage, err := f.Usage(ctx)
	if err != nil {
		return err
	}
	var oldSize int64
	if info, err := os.Stat(f.path(key)); err == nil {
		oldSize = int64(len(key)) + info.Size()
	}
	if err := QuotaCheck(f.quota, usage.UsedBytes, oldSize, int64(len(key)+len(value))); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("creating temp slot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("writing slot %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing slot %q: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return fmt.Errorf("replacing slot %q: %w", key, err)
	}
	return nil
}

// Remove implements Port.
func (f *File) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing slot %q: %w", key, err)
	}
	return nil
}

// Usage implements Port. Only slot files count toward the quota.
func (f *File) Usage(ctx context.Context) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return Usage{}, fmt.Errorf("listing slots: %w", err)
	}

	var used int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, slotExt) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return Usage{}, fmt.Errorf("stat slot %q: %w", name, err)
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, slotExt))
		if err != nil {
			key = name
		}
		used += int64(len(key)) + info.Size()
	}
	return Usage{UsedBytes: used, QuotaBytes: f.quota}, nil
}
