package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shaiso/Prospector/internal/domain"
)

func queryStep(id string) domain.Step {
	return domain.Step{
		ID: id, Kind: domain.StepKindQueryData, Title: "t",
		Params: domain.QueryDataParams{Intent: "recent_profiles"},
	}
}

func enrichStep(id, source string) domain.Step {
	return domain.Step{
		ID: id, Kind: domain.StepKindEnrichProfile, Title: "t",
		Params: domain.EnrichProfileParams{SourceStepID: source},
	}
}

func reportStep(id string, sources ...string) domain.Step {
	return domain.Step{
		ID: id, Kind: domain.StepKindReport, Title: "t",
		Params: domain.ReportParams{SourceStepIDs: sources, Columns: []string{"username"}},
	}
}

func TestValidateRefs(t *testing.T) {
	tests := []struct {
		name    string
		steps   []domain.Step
		wantErr bool
	}{
		{
			name:  "no references",
			steps: []domain.Step{queryStep("s1"), queryStep("s2")},
		},
		{
			name:  "chain",
			steps: []domain.Step{queryStep("s1"), enrichStep("s2", "s1"), reportStep("s3", "s1", "s2")},
		},
		{
			name:  "forward reference is legal",
			steps: []domain.Step{enrichStep("s1", "s2"), queryStep("s2")},
		},
		{
			name:    "dangling reference",
			steps:   []domain.Step{queryStep("s1"), enrichStep("s2", "missing")},
			wantErr: true,
		},
		{
			name:    "dangling in report sources",
			steps:   []domain.Step{queryStep("s1"), reportStep("s2", "s1", "missing")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &domain.Plan{PlanID: "p1", Objective: "x", Steps: tt.steps}
			err := ValidateRefs(plan)

			if tt.wantErr {
				if !errors.Is(err, ErrMissingSourceStep) {
					t.Errorf("expected ErrMissingSourceStep, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateRefs_ReportsReferencingStep(t *testing.T) {
	plan := &domain.Plan{
		PlanID: "p1", Objective: "x",
		Steps: []domain.Step{queryStep("s1"), enrichStep("s2", "ghost")},
	}

	err := ValidateRefs(plan)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.StepID != "s2" {
		t.Errorf("StepID = %q, want s2", vErr.StepID)
	}
}

func TestDependencies(t *testing.T) {
	plan := &domain.Plan{
		PlanID: "p1", Objective: "x",
		Steps: []domain.Step{
			queryStep("s1"),
			enrichStep("s2", "s1"),
			reportStep("s3", "s1", "s2"),
		},
	}

	deps := Dependencies(plan)

	want := map[string][]string{
		"s1": nil,
		"s2": {"s1"},
		"s3": {"s1", "s2"},
	}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("Dependencies() = %v, want %v", deps, want)
	}
}

func TestFindCycle(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		plan := &domain.Plan{
			PlanID: "p1", Objective: "x",
			Steps: []domain.Step{
				queryStep("s1"),
				enrichStep("s2", "s1"),
				reportStep("s3", "s1", "s2"),
			},
		}

		if cycle := FindCycle(plan); cycle != nil {
			t.Errorf("expected no cycle, got %v", cycle)
		}
	})

	t.Run("self cycle", func(t *testing.T) {
		plan := &domain.Plan{
			PlanID: "p1", Objective: "x",
			Steps: []domain.Step{enrichStep("s1", "s1")},
		}

		cycle := FindCycle(plan)
		if !reflect.DeepEqual(cycle, []string{"s1"}) {
			t.Errorf("cycle = %v, want [s1]", cycle)
		}
	})

	t.Run("two step cycle", func(t *testing.T) {
		plan := &domain.Plan{
			PlanID: "p1", Objective: "x",
			Steps: []domain.Step{
				enrichStep("s1", "s2"),
				enrichStep("s2", "s1"),
			},
		}

		cycle := FindCycle(plan)
		if len(cycle) != 2 {
			t.Fatalf("cycle = %v, want two steps", cycle)
		}
		members := map[string]bool{cycle[0]: true, cycle[1]: true}
		if !members["s1"] || !members["s2"] {
			t.Errorf("cycle = %v, want s1 and s2", cycle)
		}
	})

	t.Run("cycle behind a valid prefix", func(t *testing.T) {
		plan := &domain.Plan{
			PlanID: "p1", Objective: "x",
			Steps: []domain.Step{
				queryStep("s1"),
				enrichStep("s2", "s3"),
				enrichStep("s3", "s2"),
			},
		}

		cycle := FindCycle(plan)
		if len(cycle) != 2 {
			t.Fatalf("cycle = %v, want two steps", cycle)
		}
	})
}
