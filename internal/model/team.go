package model

import (
	"fmt"
	"slices"
	"strings"
)

// TeamMember is one person assigned to a team.
type TeamMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewTeamMember returns a member with a fresh id.
func NewTeamMember(name, role string) TeamMember {
	return TeamMember{
		ID:   NewID(),
		Name: CleanText(name),
		Role: CleanText(role),
	}
}

// Label formats the member as "name (role)", or just the name when no role
// is set.
func (m TeamMember) Label() string {
	if m.Role == "" {
		return m.Name
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.Role)
}

// Team is the personnel and vehicles assigned to act on a target.
type Team struct {
	Leader   string       `json:"leader"`
	Members  []TeamMember `json:"members"`
	Vehicles []string     `json:"vehicles"`
}

// Validate checks that member ids are present and unique.
func (t Team) Validate() error {
	seen := make(map[string]bool, len(t.Members))
	for i, m := range t.Members {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("team member %d: id is required", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate team member id %q", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// Clone returns a deep copy of the team.
func (t Team) Clone() Team {
	c := t
	c.Members = slices.Clone(t.Members)
	c.Vehicles = slices.Clone(t.Vehicles)
	c.normalize()
	return c
}

func (t *Team) normalize() {
	if t.Members == nil {
		t.Members = []TeamMember{}
	}
	if t.Vehicles == nil {
		t.Vehicles = []string{}
	}
}

// MemberLabels returns the "name (role)" label of every member in order.
func (t Team) MemberLabels() []string {
	labels := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		labels = append(labels, m.Label())
	}
	return labels
}

// AddMember appends m to the team.
func (t *Team) AddMember(m TeamMember) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("member name is required")
	}
	for _, existing := range t.Members {
		if existing.ID == m.ID {
			return fmt.Errorf("member %s already on team", ShortID(m.ID))
		}
	}
	t.Members = append(t.Members, m)
	return nil
}

// RemoveMember removes the member with the given id or unambiguous id
// prefix and returns it.
func (t *Team) RemoveMember(prefix string) (TeamMember, error) {
	idx, err := matchPrefix(len(t.Members), func(i int) string { return t.Members[i].ID }, prefix, "member")
	if err != nil {
		return TeamMember{}, err
	}
	removed := t.Members[idx]
	t.Members = append(t.Members[:idx:idx], t.Members[idx+1:]...)
	return removed, nil
}

// AddVehicle appends a vehicle identifier. Blank identifiers are rejected.
func (t *Team) AddVehicle(v string) error {
	v = CleanText(v)
	if v == "" {
		return fmt.Errorf("vehicle identifier is required")
	}
	t.Vehicles = append(t.Vehicles, v)
	return nil
}

// RemoveVehicle removes the first vehicle equal to v.
func (t *Team) RemoveVehicle(v string) error {
	v = CleanText(v)
	idx := slices.Index(t.Vehicles, v)
	if idx < 0 {
		return fmt.Errorf("vehicle %q: %w", v, ErrNotFound)
	}
	t.Vehicles = append(t.Vehicles[:idx:idx], t.Vehicles[idx+1:]...)
	return nil
}
