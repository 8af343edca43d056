package model

import (
	"fmt"
	"net/url"
	"strings"
)

// The list helpers below never mutate their input slice; each returns a new
// slice so a caller holding the previous list still sees the old snapshot.

// Upsert replaces the element whose id equals op.ID in place, or prepends op
// when no such element exists. It reports whether op was newly inserted.
func Upsert(ops []Operation, op Operation) ([]Operation, bool) {
	for i := range ops {
		if ops[i].ID == op.ID {
			out := make([]Operation, len(ops))
			copy(out, ops)
			out[i] = op
			return out, false
		}
	}

	out := make([]Operation, 0, len(ops)+1)
	out = append(out, op)
	out = append(out, ops...)
	return out, true
}

// ReplaceByID replaces only the element whose id equals op.ID, preserving
// the position of every other element.
func ReplaceByID(ops []Operation, op Operation) ([]Operation, error) {
	for i := range ops {
		if ops[i].ID == op.ID {
			out := make([]Operation, len(ops))
			copy(out, ops)
			out[i] = op
			return out, nil
		}
	}
	return nil, fmt.Errorf("operation %s: %w", ShortID(op.ID), ErrNotFound)
}

// RemoveByID returns ops without the element whose id equals id. The second
// return value reports whether an element was removed.
func RemoveByID(ops []Operation, id string) ([]Operation, bool) {
	out := make([]Operation, 0, len(ops))
	removed := false
	for _, op := range ops {
		if !removed && op.ID == id {
			removed = true
			continue
		}
		out = append(out, op)
	}
	return out, removed
}

// FindByID returns the index of the operation with the given id.
func FindByID(ops []Operation, id string) (int, error) {
	for i := range ops {
		if ops[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("operation %s: %w", ShortID(id), ErrNotFound)
}

// MatchID resolves a full id or an unambiguous id prefix to an index into ops.
func MatchID(ops []Operation, prefix string) (int, error) {
	return matchPrefix(len(ops), func(i int) string { return ops[i].ID }, prefix, "operation")
}

// matchPrefix finds the single element whose id equals or starts with
// prefix. An exact match always wins over prefix matches.
func matchPrefix(n int, idAt func(int) string, prefix, kind string) (int, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return -1, fmt.Errorf("empty %s id", kind)
	}

	match := -1
	for i := 0; i < n; i++ {
		id := strings.ToLower(idAt(i))
		if id == prefix {
			return i, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match >= 0 {
				return -1, fmt.Errorf("%s id %q is ambiguous", kind, prefix)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%s %s: %w", kind, prefix, ErrNotFound)
	}
	return match, nil
}

// mapsDirBase is the multi-stop route endpoint of the mapping service.
const mapsDirBase = "https://www.google.com/maps/dir/"

// MapRouteURL composes a multi-stop route starting at the briefing location
// and visiting each target address in order. Blank stops are skipped.
func MapRouteURL(op Operation) string {
	stops := make([]string, 0, len(op.Targets)+1)
	if s := strings.TrimSpace(op.BriefingLocation); s != "" {
		stops = append(stops, url.PathEscape(s))
	}
	for _, t := range op.Targets {
		if s := strings.TrimSpace(t.Address); s != "" {
			stops = append(stops, url.PathEscape(s))
		}
	}
	return mapsDirBase + strings.Join(stops, "/")
}
