package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate returns an error if the point is not finite or lies outside the
// valid lat/lng range.
func (c Coordinates) Validate() error {
	if !finite(c.Lat) || !finite(c.Lng) {
		return fmt.Errorf("invalid coordinates %v,%v: must be finite numbers", c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("invalid latitude %v: must be within [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("invalid longitude %v: must be within [-180, 180]", c.Lng)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String formats the point as "lat,lng".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// ParseCoordinates accepts "lat,lng" (spaces allowed) and validates the range.
func ParseCoordinates(input string) (Coordinates, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("invalid coordinates %q: expected lat,lng", input)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	c := Coordinates{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// Target is a site of interest within an operation. It always owns exactly
// one Team.
type Target struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	SuspectPhoto  string       `json:"suspectPhoto,omitempty"`
	LocationPhoto string       `json:"locationPhoto,omitempty"`
	Address       string       `json:"address"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	Description   string       `json:"description"`
	Team          Team         `json:"team"`
}

// NewTarget returns a target with a fresh id and an empty team.
func NewTarget(name string) Target {
	return Target{
		ID:   NewID(),
		Name: CleanText(name),
		Team: Team{
			Members:  []TeamMember{},
			Vehicles: []string{},
		},
	}
}

// Validate checks the target and its team.
func (t Target) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("target id is required")
	}
	if t.Coordinates != nil {
		if err := t.Coordinates.Validate(); err != nil {
			return fmt.Errorf("target %s: %w", ShortID(t.ID), err)
		}
	}
	if err := t.Team.Validate(); err != nil {
		return fmt.Errorf("target %s: %w", ShortID(t.ID), err)
	}
	return nil
}

// Clone returns a deep copy of the target.
func (t Target) Clone() Target {
	c := t
	if t.Coordinates != nil {
		coords := *t.Coordinates
		c.Coordinates = &coords
	}
	c.Team = t.Team.Clone()
	return c
}

// PhotoKind selects one of the two photo slots of a target.
type PhotoKind string

const (
	PhotoSuspect  PhotoKind = "suspect"
	PhotoLocation PhotoKind = "location"
)

// ParsePhotoKind returns an error if s is not a recognized photo slot.
func ParsePhotoKind(s string) (PhotoKind, error) {
	switch PhotoKind(strings.ToLower(strings.TrimSpace(s))) {
	case PhotoSuspect:
		return PhotoSuspect, nil
	case PhotoLocation:
		return PhotoLocation, nil
	default:
		return "", fmt.Errorf("invalid photo kind %q: must be one of %s, %s", s, PhotoSuspect, PhotoLocation)
	}
}

// SetPhoto stores a payload in the given slot. An empty payload clears it.
func (t *Target) SetPhoto(kind PhotoKind, payload string) {
	switch kind {
	case PhotoSuspect:
		t.SuspectPhoto = payload
	case PhotoLocation:
		t.LocationPhoto = payload
	}
}

// Photo returns the payload stored in the given slot.
func (t Target) Photo(kind PhotoKind) string {
	switch kind {
	case PhotoSuspect:
		return t.SuspectPhoto
	case PhotoLocation:
		return t.LocationPhoto
	default:
		return ""
	}
}
