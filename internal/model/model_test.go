package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func sampleOps() []Operation {
	return []Operation{
		{ID: "a1", Name: "Alpha", Targets: []Target{}},
		{ID: "b2", Name: "Bravo", Targets: []Target{}},
		{ID: "c3", Name: "Charlie", Targets: []Target{}},
	}
}

func ids(ops []Operation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.ID
	}
	return strings.Join(parts, ",")
}

func TestNewOperation(t *testing.T) {
	op := NewOperation("  Op Alpha ")
	if op.ID == "" {
		t.Fatal("expected a generated id")
	}
	if op.Name != "Op Alpha" {
		t.Errorf("Name = %q, want %q", op.Name, "Op Alpha")
	}
	if op.Targets == nil || len(op.Targets) != 0 {
		t.Errorf("Targets = %v, want empty non-nil slice", op.Targets)
	}

	other := NewOperation("Op Alpha")
	if other.ID == op.ID {
		t.Error("two operations got the same id")
	}
}

func TestNewTargetHasTeam(t *testing.T) {
	tg := NewTarget("T1")
	if tg.Team.Members == nil || tg.Team.Vehicles == nil {
		t.Fatalf("team slices must be non-nil: %+v", tg.Team)
	}

	data, err := json.Marshal(tg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"members":[]`) || !strings.Contains(string(data), `"vehicles":[]`) {
		t.Errorf("expected empty arrays in %s", data)
	}
	if strings.Contains(string(data), "suspectPhoto") {
		t.Errorf("absent photo should be omitted: %s", data)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0190f3a2-aaaa-bbbb"); got != "0190f3a2" {
		t.Errorf("ShortID = %q, want %q", got, "0190f3a2")
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID(short) = %q, want %q", got, "abc")
	}
}

func TestUpsertPrependsNew(t *testing.T) {
	ops := sampleOps()
	out, inserted := Upsert(ops, Operation{ID: "d4", Name: "Delta"})
	if !inserted {
		t.Error("expected inserted = true")
	}
	if got := ids(out); got != "d4,a1,b2,c3" {
		t.Errorf("order = %s, want d4,a1,b2,c3", got)
	}
	if got := ids(ops); got != "a1,b2,c3" {
		t.Errorf("input mutated: %s", got)
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	ops := sampleOps()
	out, inserted := Upsert(ops, Operation{ID: "b2", Name: "Bravo 2"})
	if inserted {
		t.Error("expected inserted = false")
	}
	if got := ids(out); got != "a1,b2,c3" {
		t.Errorf("order = %s, want a1,b2,c3", got)
	}
	if out[1].Name != "Bravo 2" {
		t.Errorf("out[1].Name = %q, want %q", out[1].Name, "Bravo 2")
	}
	if ops[1].Name != "Bravo" {
		t.Error("input mutated")
	}
}

func TestReplaceByID(t *testing.T) {
	ops := sampleOps()
	out, err := ReplaceByID(ops, Operation{ID: "c3", Name: "Charlie 2"})
	if err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}
	for i := range ops {
		if i == 2 {
			if out[i].Name != "Charlie 2" {
				t.Errorf("out[2].Name = %q", out[i].Name)
			}
			continue
		}
		if out[i].ID != ops[i].ID || out[i].Name != ops[i].Name {
			t.Errorf("element %d changed: %+v", i, out[i])
		}
	}

	if _, err := ReplaceByID(ops, Operation{ID: "zz"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveByID(t *testing.T) {
	tests := []struct {
		id      string
		want    string
		removed bool
	}{
		{"a1", "b2,c3", true},
		{"b2", "a1,c3", true},
		{"c3", "a1,b2", true},
		{"zz", "a1,b2,c3", false},
	}

	for _, tt := range tests {
		out, removed := RemoveByID(sampleOps(), tt.id)
		if removed != tt.removed {
			t.Errorf("RemoveByID(%q) removed = %v, want %v", tt.id, removed, tt.removed)
		}
		if got := ids(out); got != tt.want {
			t.Errorf("RemoveByID(%q) = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestMatchID(t *testing.T) {
	ops := []Operation{{ID: "0190aa-1"}, {ID: "0190ab-2"}, {ID: "0191"}}

	tests := []struct {
		prefix  string
		want    int
		wantErr bool
	}{
		{"0190aa", 0, false},
		{"0190AB", 1, false},
		{"0191", 2, false},
		{"0190", -1, true},
		{"ff", -1, true},
		{"", -1, true},
	}

	for _, tt := range tests {
		got, err := MatchID(ops, tt.prefix)
		if (err != nil) != tt.wantErr {
			t.Errorf("MatchID(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("MatchID(%q) = %d, want %d", tt.prefix, got, tt.want)
		}
	}
}

func TestOperationValidate(t *testing.T) {
	good := NewOperation("Op")
	if err := good.AddTarget(NewTarget("T1")); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	noName := good.Clone()
	noName.Name = " "
	if err := noName.Validate(); err != nil {
		t.Errorf("blank name should be accepted, got %v", err)
	}

	noID := good.Clone()
	noID.ID = ""
	if err := noID.Validate(); err == nil {
		t.Error("expected error for missing id")
	}

	dup := good.Clone()
	dup.Targets = append(dup.Targets, dup.Targets[0])
	if err := dup.Validate(); err == nil {
		t.Error("expected error for duplicate target id")
	}

	badCoords := good.Clone()
	badCoords.Targets[0].Coordinates = &Coordinates{Lat: 91}
	if err := badCoords.Validate(); err == nil {
		t.Error("expected error for out-of-range latitude")
	}

	nanCoords := good.Clone()
	nanCoords.Targets[0].Coordinates = &Coordinates{Lat: math.NaN(), Lng: 0}
	if err := nanCoords.Validate(); err == nil {
		t.Error("expected error for NaN latitude")
	}
}

func TestAddTargetRejectsDuplicate(t *testing.T) {
	op := NewOperation("Op")
	tg := NewTarget("T1")
	if err := op.AddTarget(tg); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	if err := op.AddTarget(tg); err == nil {
		t.Error("expected duplicate target error")
	}
}

func TestRemoveTarget(t *testing.T) {
	op := NewOperation("Op")
	t1, t2, t3 := NewTarget("T1"), NewTarget("T2"), NewTarget("T3")
	for _, tg := range []Target{t1, t2, t3} {
		if err := op.AddTarget(tg); err != nil {
			t.Fatalf("AddTarget: %v", err)
		}
	}

	if err := op.RemoveTarget(t2.ID); err != nil {
		t.Fatalf("RemoveTarget: %v", err)
	}
	if len(op.Targets) != 2 || op.Targets[0].ID != t1.ID || op.Targets[1].ID != t3.ID {
		t.Errorf("unexpected targets after removal: %+v", op.Targets)
	}
	if err := op.RemoveTarget(t2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	op := NewOperation("Op")
	tg := NewTarget("T1")
	tg.Coordinates = &Coordinates{Lat: 1, Lng: 2}
	tg.Team.Vehicles = []string{"VTR-1"}
	op.Targets = append(op.Targets, tg)

	c := op.Clone()
	c.Targets[0].Team.Vehicles[0] = "changed"
	c.Targets[0].Coordinates.Lat = 50

	if op.Targets[0].Team.Vehicles[0] != "VTR-1" {
		t.Error("clone shares vehicles slice")
	}
	if op.Targets[0].Coordinates.Lat != 1 {
		t.Error("clone shares coordinates")
	}
}

func TestTeamMembersAndVehicles(t *testing.T) {
	team := NewTarget("T").Team
	m1 := NewTeamMember("Souza", "driver")
	m2 := NewTeamMember("Lima", "")
	for _, m := range []TeamMember{m1, m2} {
		if err := team.AddMember(m); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}
	if err := team.AddMember(m1); err == nil {
		t.Error("expected duplicate member error")
	}
	if err := team.AddMember(TeamMember{ID: "x"}); err == nil {
		t.Error("expected error for blank member name")
	}

	labels := strings.Join(team.MemberLabels(), ", ")
	if labels != "Souza (driver), Lima" {
		t.Errorf("MemberLabels = %q", labels)
	}

	removed, err := team.RemoveMember(m1.ID)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if removed.Name != "Souza" || len(team.Members) != 1 {
		t.Errorf("RemoveMember removed %+v, remaining %+v", removed, team.Members)
	}

	if err := team.AddVehicle(" VTR-01 "); err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}
	if err := team.AddVehicle("  "); err == nil {
		t.Error("expected error for blank vehicle")
	}
	if team.Vehicles[0] != "VTR-01" {
		t.Errorf("vehicle = %q, want trimmed", team.Vehicles[0])
	}
	if err := team.RemoveVehicle("VTR-01"); err != nil {
		t.Fatalf("RemoveVehicle: %v", err)
	}
	if err := team.RemoveVehicle("VTR-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		input   string
		want    Coordinates
		wantErr bool
	}{
		{"-23.55,-46.63", Coordinates{Lat: -23.55, Lng: -46.63}, false},
		{" 10 , 20 ", Coordinates{Lat: 10, Lng: 20}, false},
		{"91,0", Coordinates{}, true},
		{"0,181", Coordinates{}, true},
		{"abc,1", Coordinates{}, true},
		{"1", Coordinates{}, true},
		{"NaN,NaN", Coordinates{}, true},
		{"0,NaN", Coordinates{}, true},
		{"Inf,0", Coordinates{}, true},
		{"0,-Inf", Coordinates{}, true},
	}

	for _, tt := range tests {
		got, err := ParseCoordinates(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCoordinates(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCoordinates(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestParsePhotoKind(t *testing.T) {
	if k, err := ParsePhotoKind("Suspect"); err != nil || k != PhotoSuspect {
		t.Errorf("ParsePhotoKind(Suspect) = %q, %v", k, err)
	}
	if _, err := ParsePhotoKind("face"); err == nil {
		t.Error("expected error for unknown kind")
	}

	var tg Target
	tg.SetPhoto(PhotoLocation, "data:image/jpeg;base64,AA==")
	if tg.Photo(PhotoLocation) == "" || tg.Photo(PhotoSuspect) != "" {
		t.Errorf("SetPhoto stored in the wrong slot: %+v", tg)
	}
}

func TestMapRouteURL(t *testing.T) {
	op := Operation{
		BriefingLocation: "Base Central",
		Targets: []Target{
			{Address: "123 Main St"},
			{Address: " "},
			{Address: "Rua A/B"},
		},
	}

	want := "https://www.google.com/maps/dir/Base%20Central/123%20Main%20St/Rua%20A%2FB"
	if got := MapRouteURL(op); got != want {
		t.Errorf("MapRouteURL = %q, want %q", got, want)
	}
}

func TestOperationJSONFieldNames(t *testing.T) {
	op := Operation{ID: "1", Name: "Op", BriefingLocation: "HQ", BriefingTime: "05:00", Date: "2024-01-02", Targets: []Target{}}
	data, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"briefingLocation":"HQ"`, `"briefingTime":"05:00"`, `"date":"2024-01-02"`, `"targets":[]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}
