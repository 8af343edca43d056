// Package filter selects operations for listing.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

// Query narrows a list of operations. Zero fields match everything.
type Query struct {
	Text     string   // case-insensitive substring of any name, address or location
	Date     string   // exact operation date
	Vehicles []string // every vehicle must be assigned to some target
}

// Empty reports whether q matches every operation.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Text) == "" && q.Date == "" && len(q.Vehicles) == 0
}

// ToStringSet converts a slice of strings to a set for O(1) membership checks.
func ToStringSet(ss []string) map[string]struct{} {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// HasAllVehicles returns true if the operation's teams together use every
// vehicle in the required set.
func HasAllVehicles(op model.Operation, required map[string]struct{}) bool {
	have := make(map[string]struct{})
	for _, t := range op.Targets {
		for _, v := range t.Team.Vehicles {
			have[v] = struct{}{}
		}
	}
	for v := range required {
		if _, ok := have[v]; !ok {
			return false
		}
	}
	return true
}

// Matches reports whether op satisfies every field of q.
func Matches(op model.Operation, q Query) bool {
	if q.Date != "" && op.Date != q.Date {
		return false
	}
	if len(q.Vehicles) > 0 && !HasAllVehicles(op, ToStringSet(q.Vehicles)) {
		return false
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		fold := cases.Fold()
		return containsText(op, fold.String(text), fold)
	}
	return true
}

func containsText(op model.Operation, needle string, fold cases.Caser) bool {
	fields := []string{op.Name, op.BriefingLocation}
	for _, t := range op.Targets {
		fields = append(fields, t.Name, t.Address, t.Team.Leader)
		for _, m := range t.Team.Members {
			fields = append(fields, m.Name)
		}
	}
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

// Apply returns the operations matching q, in their original order. The
// input slice is never modified.
func Apply(ops []model.Operation, q Query) []model.Operation {
	out := make([]model.Operation, 0, len(ops))
	for _, op := range ops {
		if Matches(op, q) {
			out = append(out, op)
		}
	}
	return out
}
