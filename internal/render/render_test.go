package render

import (
	"strings"
	"testing"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

func sampleOperation() model.Operation {
	op := model.NewOperation("Op Alpha")
	op.ID = "0190aaaa-bbbb-7ccc-8ddd-eeeeffff0000"
	op.Date = "2024-03-10"
	op.BriefingLocation = "Base Central"
	op.BriefingTime = "05:00"

	tg := model.NewTarget("T1")
	tg.ID = "0190bbbb-0000-7000-8000-000000000001"
	tg.Address = "123 Main St"
	tg.Coordinates = &model.Coordinates{Lat: -23.55, Lng: -46.63}
	tg.Description = "Two-story house"
	tg.SuspectPhoto = "data:image/jpeg;base64,AAAAAAAA"
	tg.Team.Leader = "Silva"
	tg.Team.Members = []model.TeamMember{
		{ID: "m1", Name: "Souza", Role: "driver"},
		{ID: "m2", Name: "Lima"},
	}
	tg.Team.Vehicles = []string{"VTR-01", "VTR-02"}
	op.Targets = []model.Target{tg}
	return op
}

func TestColorsEnabled(t *testing.T) {
	t.Setenv("TERM", "xterm")
	t.Setenv("NO_COLOR", "")
	if ColorsEnabled() {
		t.Error("NO_COLOR set to empty string should still disable colors")
	}
}

func TestColorsEnabledDumbTerm(t *testing.T) {
	t.Setenv("TERM", "dumb")
	if ColorsEnabled() {
		t.Error("TERM=dumb should disable colors")
	}
}

func TestEmptyStatePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		hint  string
		quiet bool
		want  string
	}{
		{"do this", false, "Nothing\ndo this"},
		{"do this", true, "Nothing"},
		{"", false, "Nothing"},
	}
	for _, tt := range tests {
		if got := EmptyState("Nothing", tt.hint, tt.quiet); got != tt.want {
			t.Errorf("EmptyState(hint=%q, quiet=%v) = %q, want %q", tt.hint, tt.quiet, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"Operação Ágil", 6, "Ope..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestRenderCardsEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	got := RenderCards(nil, CardOptions{})
	if !strings.Contains(got, "No operations planned.") {
		t.Errorf("unexpected empty state: %q", got)
	}
}

func TestRenderPlainCards(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	bravo := model.NewOperation("Op Bravo")
	got := RenderCards([]model.Operation{sampleOperation(), bravo}, CardOptions{})

	for _, want := range []string{
		"=== Op Alpha [0190aaaa] ===",
		"Date: 2024-03-10  05:00",
		"Briefing: Base Central",
		"1 target / 2 members / 2 vehicles",
		"=== Op Bravo [",
		"0 targets / 0 members / 0 vehicles",
		"Date: -  -",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}

	if strings.Index(got, "Op Alpha") > strings.Index(got, "Op Bravo") {
		t.Error("cards should keep the list order")
	}
}

func TestRenderColorCard(t *testing.T) {
	card := renderColorCard(sampleOperation())
	if !strings.Contains(card, "Op Alpha") || !strings.Contains(card, "1 target") {
		t.Errorf("card missing content:\n%s", card)
	}
	if !strings.Contains(card, "╭") {
		t.Errorf("expected rounded border, got:\n%s", card)
	}
}

func TestRenderTablePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	got := RenderTable([]model.Operation{sampleOperation()})

	if !strings.HasPrefix(got, "ID") {
		t.Errorf("expected header first, got:\n%s", got)
	}
	for _, want := range []string{"0190aaaa", "Op Alpha", "2024-03-10", "05:00", "Base Central"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in table, got:\n%s", want, got)
		}
	}
}

func TestRenderDetailPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	got := RenderDetail(sampleOperation())

	for _, want := range []string{
		"Op Alpha  0190aaaa-bbbb-7ccc-8ddd-eeeeffff0000",
		"Briefing: Base Central",
		"Route: https://www.google.com/maps/dir/Base%20Central/123%20Main%20St",
		"Target T1 [0190bbbb]",
		"Coordinates: -23.55,-46.63",
		"Leader: Silva",
		"- Souza (driver) [m1]",
		"- Lima [m2]",
		"Vehicles: VTR-01, VTR-02",
		"suspect photo: image/jpeg, 6 B",
		"    Two-story house",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in detail, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "location photo") {
		t.Error("absent photo should not be listed")
	}
}

func TestRenderDetailNoTargets(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	got := RenderDetail(model.NewOperation("Empty"))
	if !strings.Contains(got, "No targets yet.") {
		t.Errorf("expected empty target hint, got:\n%s", got)
	}
	if strings.Contains(got, "Route:") {
		t.Error("no route without targets")
	}
}

func TestPhotoSummaryUnreadable(t *testing.T) {
	if got := photoSummary("data:image/png,notbase64"); got != "unreadable" {
		t.Errorf("photoSummary = %q, want unreadable", got)
	}
}
