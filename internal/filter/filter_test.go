package filter

import (
	"testing"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

func operations() []model.Operation {
	alpha := model.Operation{ID: "a", Name: "Op Alpha", Date: "2024-03-10", BriefingLocation: "Base Central"}
	alpha.Targets = []model.Target{{
		ID:      "t1",
		Name:    "Galpão",
		Address: "Rua São João, 10",
		Team: model.Team{
			Leader:   "Silva",
			Members:  []model.TeamMember{{ID: "m1", Name: "Souza"}},
			Vehicles: []string{"VTR-01", "VTR-02"},
		},
	}}
	bravo := model.Operation{ID: "b", Name: "Op Bravo", Date: "2024-04-01"}
	return []model.Operation{alpha, bravo}
}

func ids(ops []model.Operation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"empty query", Query{}, []string{"a", "b"}},
		{"name", Query{Text: "bravo"}, []string{"b"}},
		{"briefing location", Query{Text: "central"}, []string{"a"}},
		{"accented address", Query{Text: "SÃO JOÃO"}, []string{"a"}},
		{"leader", Query{Text: "silva"}, []string{"a"}},
		{"member", Query{Text: "souza"}, []string{"a"}},
		{"no match", Query{Text: "charlie"}, []string{}},
		{"date", Query{Date: "2024-04-01"}, []string{"b"}},
		{"vehicles all present", Query{Vehicles: []string{"VTR-01", "VTR-02"}}, []string{"a"}},
		{"vehicles one missing", Query{Vehicles: []string{"VTR-01", "VTR-09"}}, []string{}},
		{"combined", Query{Text: "op", Date: "2024-03-10"}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(operations(), tt.query))
			if len(got) != len(tt.want) {
				t.Fatalf("Apply(%+v) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Apply(%+v) = %v, want %v", tt.query, got, tt.want)
				}
			}
		})
	}
}

func TestQueryEmpty(t *testing.T) {
	if !(Query{Text: "  "}).Empty() {
		t.Error("blank text should count as empty")
	}
	if (Query{Date: "2024-01-01"}).Empty() {
		t.Error("a date filter is not empty")
	}
}

func TestToStringSet(t *testing.T) {
	if ToStringSet(nil) != nil {
		t.Error("ToStringSet(nil) should be nil")
	}
	set := ToStringSet([]string{"a", "b", "a"})
	if len(set) != 2 {
		t.Errorf("len = %d, want 2", len(set))
	}
}
