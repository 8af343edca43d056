package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when an operation, target or member id does not
// resolve to an element.
var ErrNotFound = errors.New("not found")

// shortIDLen is the number of leading id characters shown in listings.
const shortIDLen = 8

// NewID returns a fresh time-ordered identifier. IDs are assigned once at
// creation and never reassigned.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ShortID returns the display form of an id.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// Operation is a tactical plan record: briefing metadata plus the ordered
// list of target sites.
type Operation struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	BriefingLocation string   `json:"briefingLocation"`
	BriefingTime     string   `json:"briefingTime"`
	Date             string   `json:"date"`
	Targets          []Target `json:"targets"`
}

// NewOperation returns an operation with a fresh id and an empty target list.
func NewOperation(name string) Operation {
	return Operation{
		ID:      NewID(),
		Name:    CleanText(name),
		Targets: []Target{},
	}
}

// Validate checks the structural invariants of an operation and every
// target it owns. A blank name is allowed; commands that take a name
// reject it before it gets here.
func (o Operation) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("operation id is required")
	}

	seen := make(map[string]bool, len(o.Targets))
	for i, t := range o.Targets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("operation %s: target %d: %w", ShortID(o.ID), i, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("operation %s: duplicate target id %q", ShortID(o.ID), t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Normalize fills nil slices so the operation serializes with empty arrays
// rather than nulls.
func (o *Operation) Normalize() {
	if o.Targets == nil {
		o.Targets = []Target{}
	}
	for i := range o.Targets {
		o.Targets[i].Team.normalize()
	}
}

// Clone returns a deep copy of the operation.
func (o Operation) Clone() Operation {
	c := o
	c.Targets = make([]Target, len(o.Targets))
	for i, t := range o.Targets {
		c.Targets[i] = t.Clone()
	}
	return c
}

// AddTarget appends t to the operation. The target id must be unique within
// the operation.
func (o *Operation) AddTarget(t Target) error {
	if _, err := o.FindTarget(t.ID); err == nil {
		return fmt.Errorf("target %s already exists in operation %s", ShortID(t.ID), ShortID(o.ID))
	}
	t.Team.normalize()
	o.Targets = append(o.Targets, t)
	return nil
}

// RemoveTarget removes the target with the given id, preserving the order
// of the remaining targets.
func (o *Operation) RemoveTarget(id string) error {
	for i, t := range o.Targets {
		if t.ID == id {
			o.Targets = append(o.Targets[:i:i], o.Targets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("target %s: %w", ShortID(id), ErrNotFound)
}

// FindTarget returns a pointer to the target with the given id so callers
// can mutate it in place.
func (o *Operation) FindTarget(id string) (*Target, error) {
	for i := range o.Targets {
		if o.Targets[i].ID == id {
			return &o.Targets[i], nil
		}
	}
	return nil, fmt.Errorf("target %s: %w", ShortID(id), ErrNotFound)
}

// MatchTarget resolves a full id or an unambiguous id prefix to a target.
func (o *Operation) MatchTarget(prefix string) (*Target, error) {
	idx, err := matchPrefix(len(o.Targets), func(i int) string { return o.Targets[i].ID }, prefix, "target")
	if err != nil {
		return nil, err
	}
	return &o.Targets[idx], nil
}

// CleanText trims surrounding whitespace and normalizes text to NFC so names
// typed on different platforms compare and export identically.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
