package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

// validPlanJSON — план со всеми пятью видами шагов.
const validPlanJSON = `{
	"planId": "plan-001",
	"objective": "Find and contact ML engineers",
	"notes": "generated for campaign X",
	"steps": [
		{
			"id": "step-1",
			"kind": "QUERY_DATA",
			"title": "Fetch recent profiles",
			"params": {"intent": "recent_profiles", "limit": 10}
		},
		{
			"id": "step-2",
			"kind": "ENRICH_PROFILE",
			"title": "Enrich profiles",
			"params": {"sourceStepId": "step-1", "maxProfiles": 5}
		},
		{
			"id": "step-3",
			"kind": "LINKEDIN_RESEARCH",
			"title": "Research on LinkedIn",
			"params": {"sourceStepId": "step-1", "tags": ["ml", "golang"]}
		},
		{
			"id": "step-4",
			"kind": "GENERATE_OUTREACH",
			"title": "Write outreach messages",
			"params": {"sourceStepId": "step-2", "tone": "friendly", "companyName": "Acme"}
		},
		{
			"id": "step-5",
			"kind": "REPORT",
			"title": "Build report",
			"params": {"sourceStepIds": ["step-2", "step-4"], "columns": ["username", "message"]}
		}
	]
}`

func TestParsePlan_Valid(t *testing.T) {
	plan, err := ParsePlan([]byte(validPlanJSON))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if plan.PlanID != "plan-001" {
		t.Errorf("PlanID = %q, want plan-001", plan.PlanID)
	}
	if plan.Objective != "Find and contact ML engineers" {
		t.Errorf("Objective = %q", plan.Objective)
	}
	if plan.Notes != "generated for campaign X" {
		t.Errorf("Notes = %q", plan.Notes)
	}
	if len(plan.Steps) != 5 {
		t.Fatalf("len(Steps) = %d, want 5", len(plan.Steps))
	}

	query, ok := plan.Steps[0].Params.(domain.QueryDataParams)
	if !ok {
		t.Fatalf("step-1 params = %T, want QueryDataParams", plan.Steps[0].Params)
	}
	if query.Intent != "recent_profiles" || query.Limit != 10 {
		t.Errorf("query params = %+v", query)
	}

	enrich, ok := plan.Steps[1].Params.(domain.EnrichProfileParams)
	if !ok {
		t.Fatalf("step-2 params = %T, want EnrichProfileParams", plan.Steps[1].Params)
	}
	if enrich.SourceStepID != "step-1" || enrich.MaxProfiles != 5 {
		t.Errorf("enrich params = %+v", enrich)
	}

	research, ok := plan.Steps[2].Params.(domain.LinkedInResearchParams)
	if !ok {
		t.Fatalf("step-3 params = %T, want LinkedInResearchParams", plan.Steps[2].Params)
	}
	if len(research.Tags) != 2 {
		t.Errorf("research tags = %v", research.Tags)
	}

	outreach, ok := plan.Steps[3].Params.(domain.GenerateOutreachParams)
	if !ok {
		t.Fatalf("step-4 params = %T, want GenerateOutreachParams", plan.Steps[3].Params)
	}
	if outreach.SourceStepID != "step-2" || outreach.Tone != "friendly" {
		t.Errorf("outreach params = %+v", outreach)
	}

	report, ok := plan.Steps[4].Params.(domain.ReportParams)
	if !ok {
		t.Fatalf("step-5 params = %T, want ReportParams", plan.Steps[4].Params)
	}
	if len(report.SourceStepIDs) != 2 || len(report.Columns) != 2 {
		t.Errorf("report params = %+v", report)
	}
}

func TestParsePlan_MalformedJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "this is not json"},
		{name: "truncated", raw: `{"planId": "p1", "steps": [`},
		{name: "wrong top-level type", raw: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.raw))
			if !errors.Is(err, ErrMalformedJSON) {
				t.Errorf("expected ErrMalformedJSON, got %v", err)
			}
		})
	}
}

func TestParsePlan_PlanLevelErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "missing planId",
			raw:  `{"objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}}]}`,
			want: ErrEmptyPlanID,
		},
		{
			name: "whitespace planId",
			raw:  `{"planId": "   ", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}}]}`,
			want: ErrEmptyPlanID,
		},
		{
			name: "missing objective",
			raw:  `{"planId": "p1", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}}]}`,
			want: ErrEmptyObjective,
		},
		{
			name: "missing steps",
			raw:  `{"planId": "p1", "objective": "x"}`,
			want: ErrEmptySteps,
		},
		{
			name: "empty steps array",
			raw:  `{"planId": "p1", "objective": "x", "steps": []}`,
			want: ErrEmptySteps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParsePlan_StepLevelErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     error
		wantStep string
	}{
		{
			name: "empty step id",
			raw:  `{"planId": "p1", "objective": "x", "steps": [{"id": "", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}}]}`,
			want: ErrEmptyStepID,
		},
		{
			name: "duplicate step id",
			raw: `{"planId": "p1", "objective": "x", "steps": [
				{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}},
				{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}}
			]}`,
			want:     ErrDuplicateStepID,
			wantStep: "s1",
		},
		{
			name:     "unknown kind",
			raw:      `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "SEND_EMAIL", "title": "t", "params": {}}]}`,
			want:     ErrUnknownStepKind,
			wantStep: "s1",
		},
		{
			name:     "lowercase kind",
			raw:      `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "query_data", "title": "t", "params": {"intent": "recent_profiles"}}]}`,
			want:     ErrUnknownStepKind,
			wantStep: "s1",
		},
		{
			name:     "empty title",
			raw:      `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "", "params": {"intent": "recent_profiles"}}]}`,
			want:     ErrEmptyStepTitle,
			wantStep: "s1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.StepID != tt.wantStep {
				t.Errorf("StepID = %q, want %q", vErr.StepID, tt.wantStep)
			}
		})
	}
}

func TestParsePlan_ParamsErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{
			name:      "missing params",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t"}]}`,
			wantField: "params",
		},
		{
			name:      "null params",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": null}]}`,
			wantField: "params",
		},
		{
			name:      "query without intent",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"limit": 5}}]}`,
			wantField: "params.intent",
		},
		{
			name:      "query with negative limit",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles", "limit": -1}}]}`,
			wantField: "params.limit",
		},
		{
			name:      "enrich without source",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "ENRICH_PROFILE", "title": "t", "params": {"maxProfiles": 3}}]}`,
			wantField: "params.sourceStepId",
		},
		{
			name:      "outreach without source",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "GENERATE_OUTREACH", "title": "t", "params": {"tone": "formal"}}]}`,
			wantField: "params.sourceStepId",
		},
		{
			name: "report without sources",
			raw: `{"planId": "p1", "objective": "x", "steps": [
				{"id": "s1", "kind": "REPORT", "title": "t", "params": {"sourceStepIds": [], "columns": ["a"]}}
			]}`,
			wantField: "params.sourceStepIds",
		},
		{
			name: "report without columns",
			raw: `{"planId": "p1", "objective": "x", "steps": [
				{"id": "s0", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}},
				{"id": "s1", "kind": "REPORT", "title": "t", "params": {"sourceStepIds": ["s0"], "columns": []}}
			]}`,
			wantField: "params.columns",
		},
		{
			name: "report with unsupported format",
			raw: `{"planId": "p1", "objective": "x", "steps": [
				{"id": "s0", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}},
				{"id": "s1", "kind": "REPORT", "title": "t", "params": {"sourceStepIds": ["s0"], "columns": ["a"], "format": "xlsx"}}
			]}`,
			wantField: "params.format",
		},
		{
			name:      "params type mismatch",
			raw:       `{"planId": "p1", "objective": "x", "steps": [{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": 42}}]}`,
			wantField: "params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestParsePlan_DanglingReference(t *testing.T) {
	raw := `{"planId": "p1", "objective": "x", "steps": [
		{"id": "s1", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}},
		{"id": "s2", "kind": "ENRICH_PROFILE", "title": "t", "params": {"sourceStepId": "nonexistent"}}
	]}`

	_, err := ParsePlan([]byte(raw))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrMissingSourceStep) {
		t.Errorf("expected ErrMissingSourceStep, got %v", err)
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.StepID != "s2" {
		t.Errorf("StepID = %q, want s2", vErr.StepID)
	}
}

func TestParsePlan_ForwardReference(t *testing.T) {
	// Ссылка на шаг, стоящий позже в массиве, проходит валидацию:
	// она упадёт во время выполнения, а не при разборе.
	raw := `{"planId": "p1", "objective": "x", "steps": [
		{"id": "s1", "kind": "ENRICH_PROFILE", "title": "t", "params": {"sourceStepId": "s2"}},
		{"id": "s2", "kind": "QUERY_DATA", "title": "t", "params": {"intent": "recent_profiles"}}
	]}`

	plan, err := ParsePlan([]byte(raw))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Errorf("len(Steps) = %d, want 2", len(plan.Steps))
	}
}

func TestParsePlan_IgnoresRuntimeFields(t *testing.T) {
	// Источник плана не может подставить runtime-поля: wire-форма
	// шага их не содержит.
	raw := `{"planId": "p1", "objective": "x", "steps": [
		{
			"id": "s1", "kind": "QUERY_DATA", "title": "t",
			"params": {"intent": "recent_profiles"},
			"status": "SUCCESS",
			"error": "injected",
			"outputSummary": "injected"
		}
	]}`

	plan, err := ParsePlan([]byte(raw))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	step := plan.Steps[0]
	if step.Status != "" {
		t.Errorf("Status = %q, want empty until ApplyDefaults", step.Status)
	}
	if step.Error != "" || step.OutputSummary != "" {
		t.Errorf("runtime fields leaked: error=%q summary=%q", step.Error, step.OutputSummary)
	}
}

func TestValidate_TypedPlan(t *testing.T) {
	plan := &domain.Plan{
		PlanID:    "p1",
		Objective: "x",
		Steps: []domain.Step{
			{ID: "s1", Kind: domain.StepKindQueryData, Title: "t",
				Params: domain.QueryDataParams{Intent: "recent_profiles"}},
		},
	}

	if err := Validate(plan); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidate_ParamsKindMismatch(t *testing.T) {
	plan := &domain.Plan{
		PlanID:    "p1",
		Objective: "x",
		Steps: []domain.Step{
			{ID: "s1", Kind: domain.StepKindQueryData, Title: "t",
				Params: domain.EnrichProfileParams{SourceStepID: "s0"}},
		},
	}

	err := Validate(plan)
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestValidate_NilParams(t *testing.T) {
	plan := &domain.Plan{
		PlanID:    "p1",
		Objective: "x",
		Steps: []domain.Step{
			{ID: "s1", Kind: domain.StepKindQueryData, Title: "t"},
		},
	}

	err := Validate(plan)
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Run("sets createdAt and step statuses", func(t *testing.T) {
		plan := &domain.Plan{
			PlanID:    "p1",
			Objective: "x",
			Steps: []domain.Step{
				{ID: "s1", Kind: domain.StepKindQueryData, Title: "t",
					Params: domain.QueryDataParams{Intent: "recent_profiles"}},
				{ID: "s2", Kind: domain.StepKindEnrichProfile, Title: "t",
					Params: domain.EnrichProfileParams{SourceStepID: "s1"}},
			},
		}

		ApplyDefaults(plan)

		if plan.CreatedAt == nil {
			t.Error("expected CreatedAt to be set")
		}
		for i := range plan.Steps {
			if plan.Steps[i].Status != domain.StepStatusPending {
				t.Errorf("step %d status = %q, want PENDING", i, plan.Steps[i].Status)
			}
		}
	})

	t.Run("keeps provided createdAt", func(t *testing.T) {
		created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
		plan := &domain.Plan{
			PlanID:    "p1",
			Objective: "x",
			CreatedAt: &created,
			Steps: []domain.Step{
				{ID: "s1", Kind: domain.StepKindQueryData, Title: "t",
					Params: domain.QueryDataParams{Intent: "recent_profiles"}},
			},
		}

		ApplyDefaults(plan)

		if !plan.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", plan.CreatedAt, created)
		}
	})
}
