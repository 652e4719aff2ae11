package registry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/engine"
)

func testPlan(planID string) *domain.Plan {
	return &domain.Plan{
		PlanID:    planID,
		Objective: "find warm leads",
		Steps: []domain.Step{
			{
				ID:     "fetch",
				Kind:   domain.StepKindQueryData,
				Title:  "Fetch recent profiles",
				Params: domain.QueryDataParams{Intent: "recent_profiles", Limit: 10},
			},
			{
				ID:    "report",
				Kind:  domain.StepKindReport,
				Title: "Write report",
				Params: domain.ReportParams{
					SourceStepIDs: []string{"fetch"},
					Columns:       []string{"current_username"},
				},
			},
		},
	}
}

func mustSave(t *testing.T, m *Memory, plan *domain.Plan) *domain.StoredPlan {
	t.Helper()
	stored, err := m.Save(context.Background(), plan)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return stored
}

func TestMemory_SaveAppliesDefaults(t *testing.T) {
	m := NewMemory()
	stored := mustSave(t, m, testPlan("plan-1"))

	if stored.CreatedAt == nil {
		t.Error("expected createdAt to be set")
	}
	if stored.StoredAt.IsZero() {
		t.Error("expected storedAt to be set")
	}
	for _, step := range stored.Steps {
		if step.Status != domain.StepStatusPending {
			t.Errorf("step %s: status = %s, want PENDING", step.ID, step.Status)
		}
	}
	if stored.StepOutputs == nil {
		t.Error("expected stepOutputs map to be initialised")
	}
}

func TestMemory_SaveDoesNotMutateCaller(t *testing.T) {
	m := NewMemory()
	plan := testPlan("plan-1")
	mustSave(t, m, plan)
	mustSave(t, m, plan)

	if plan.PlanID != "plan-1" {
		t.Errorf("caller plan id = %s, want plan-1", plan.PlanID)
	}
	if plan.Steps[0].Status != "" {
		t.Errorf("caller step status = %s, want empty", plan.Steps[0].Status)
	}
}

func TestMemory_SaveRejectsInvalidPlan(t *testing.T) {
	m := NewMemory()

	_, err := m.Save(context.Background(), &domain.Plan{PlanID: "p", Objective: "o"})
	if !errors.Is(err, engine.ErrEmptySteps) {
		t.Errorf("expected ErrEmptySteps, got %v", err)
	}

	bad := testPlan("plan-1")
	bad.Steps[1].Params = domain.ReportParams{
		SourceStepIDs: []string{"missing"},
		Columns:       []string{"current_username"},
	}
	_, err = m.Save(context.Background(), bad)
	if !errors.Is(err, engine.ErrMissingSourceStep) {
		t.Errorf("expected ErrMissingSourceStep, got %v", err)
	}
}

func TestMemory_PlanIDCollision(t *testing.T) {
	m := NewMemory()

	first := mustSave(t, m, testPlan("plan-x"))
	second := mustSave(t, m, testPlan("plan-x"))
	third := mustSave(t, m, testPlan("plan-x"))

	if first.PlanID != "plan-x" {
		t.Errorf("first id = %s, want plan-x", first.PlanID)
	}
	if second.PlanID != "plan-x-2" {
		t.Errorf("second id = %s, want plan-x-2", second.PlanID)
	}
	if third.PlanID != "plan-x-3" {
		t.Errorf("third id = %s, want plan-x-3", third.PlanID)
	}
}

func TestMemory_GetNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "ghost")
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestMemory_ListNewestFirst(t *testing.T) {
	m := NewMemory()
	mustSave(t, m, testPlan("plan-a"))
	mustSave(t, m, testPlan("plan-b"))
	mustSave(t, m, testPlan("plan-c"))

	plans, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := make([]string, len(plans))
	for i, p := range plans {
		got[i] = p.PlanID
	}
	want := []string{"plan-c", "plan-b", "plan-a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() order = %v, want %v", got, want)
		}
	}
}

func TestMemory_UpdateCopyOnWrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	stored := mustSave(t, m, testPlan("plan-1"))

	before, err := m.Get(ctx, stored.PlanID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	_, err = m.Update(ctx, stored.PlanID, func(sp *domain.StoredPlan) error {
		sp.Steps[0].Title = "changed"
		sp.StepOutputs["fetch"] = &domain.StepOutput{Records: []domain.Record{{"a": 1}}}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Снимок, выданный до обновления, не изменился.
	if before.Steps[0].Title != "Fetch recent profiles" {
		t.Errorf("old snapshot title = %q, want unchanged", before.Steps[0].Title)
	}
	if len(before.StepOutputs) != 0 {
		t.Errorf("old snapshot outputs = %d entries, want 0", len(before.StepOutputs))
	}

	after, err := m.Get(ctx, stored.PlanID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.Steps[0].Title != "changed" {
		t.Errorf("new snapshot title = %q, want changed", after.Steps[0].Title)
	}
}

func TestMemory_UpdateMutateErrorAborts(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	stored := mustSave(t, m, testPlan("plan-1"))

	boom := errors.New("boom")
	_, err := m.Update(ctx, stored.PlanID, func(sp *domain.StoredPlan) error {
		sp.Steps[0].Title = "half-done"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutate error, got %v", err)
	}

	current, _ := m.Get(ctx, stored.PlanID)
	if current.Steps[0].Title != "Fetch recent profiles" {
		t.Errorf("failed update leaked changes: title = %q", current.Steps[0].Title)
	}
}

func TestMemory_RecordStepOutput(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	stored := mustSave(t, m, testPlan("plan-1"))

	output := &domain.StepOutput{
		Records: []domain.Record{{"current_username": "alice"}},
		Meta:    map[string]any{"rowCount": 1},
	}
	if err := m.RecordStepOutput(ctx, stored.PlanID, "fetch", output); err != nil {
		t.Fatalf("RecordStepOutput() error = %v", err)
	}

	current, _ := m.Get(ctx, stored.PlanID)
	got, ok := current.StepOutputs["fetch"]
	if !ok {
		t.Fatal("expected recorded output for step fetch")
	}
	if len(got.Records) != 1 {
		t.Errorf("records = %d, want 1", len(got.Records))
	}

	err := m.RecordStepOutput(ctx, stored.PlanID, "ghost", output)
	if !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected ErrStepNotFound, got %v", err)
	}
}

func TestMemory_SetStepStatusLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	stored := mustSave(t, m, testPlan("plan-1"))

	if err := m.SetStepStatus(ctx, stored.PlanID, "fetch", domain.StepStatusRunning, nil); err != nil {
		t.Fatalf("SetStepStatus(RUNNING) error = %v", err)
	}
	current, _ := m.Get(ctx, stored.PlanID)
	step, _ := current.Step("fetch")
	if step.Status != domain.StepStatusRunning {
		t.Errorf("status = %s, want RUNNING", step.Status)
	}
	if step.StartedAt == nil {
		t.Error("expected startedAt to be stamped")
	}

	extra := &StatusExtra{
		OutputSummary: "fetched 2 profiles",
		ArtifactIDs:   []string{"art-1"},
		Snippet:       &domain.Snippet{TotalRecords: 2},
	}
	if err := m.SetStepStatus(ctx, stored.PlanID, "fetch", domain.StepStatusSuccess, extra); err != nil {
		t.Fatalf("SetStepStatus(SUCCESS) error = %v", err)
	}
	current, _ = m.Get(ctx, stored.PlanID)
	step, _ = current.Step("fetch")
	if step.Status != domain.StepStatusSuccess {
		t.Errorf("status = %s, want SUCCESS", step.Status)
	}
	if step.EndedAt == nil {
		t.Error("expected endedAt to be stamped")
	}
	if step.StartedAt == nil {
		t.Error("terminal transition must keep startedAt")
	}
	if step.OutputSummary != "fetched 2 profiles" {
		t.Errorf("outputSummary = %q", step.OutputSummary)
	}
	if len(step.ProducedArtifactIDs) != 1 || step.ProducedArtifactIDs[0] != "art-1" {
		t.Errorf("producedArtifactIds = %v", step.ProducedArtifactIDs)
	}
	if step.ResultSnippet == nil || step.ResultSnippet.TotalRecords != 2 {
		t.Errorf("resultSnippet = %+v", step.ResultSnippet)
	}
}

func TestMemory_SetStepStatusRejectsIllegalTransition(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	stored := mustSave(t, m, testPlan("plan-1"))

	// PENDING -> SUCCESS минует RUNNING.
	err := m.SetStepStatus(ctx, stored.PlanID, "fetch", domain.StepStatusSuccess, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if err := m.SetStepStatus(ctx, stored.PlanID, "fetch", domain.StepStatusRunning, nil); err != nil {
		t.Fatalf("SetStepStatus(RUNNING) error = %v", err)
	}
	if err := m.SetStepStatus(ctx, stored.PlanID, "fetch", domain.StepStatusError, nil); err != nil {
		t.Fatalf("SetStepStatus(ERROR) error = %v", err)
	}

	// Терминальный статус окончателен.
	err = m.SetStepStatus(ctx, stored.PlanID, "fetch", domain.StepStatusRunning, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition after terminal, got %v", err)
	}
}

func TestMemory_ViewOmitsStepOutputs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	stored := mustSave(t, m, testPlan("plan-1"))

	output := &domain.StepOutput{Records: []domain.Record{{"secret_payload": "full row"}}}
	if err := m.RecordStepOutput(ctx, stored.PlanID, "fetch", output); err != nil {
		t.Fatalf("RecordStepOutput() error = %v", err)
	}

	current, _ := m.Get(ctx, stored.PlanID)
	raw, err := json.Marshal(current.View())
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	if strings.Contains(string(raw), "stepOutputs") {
		t.Error("view must not expose stepOutputs")
	}
	if strings.Contains(string(raw), "secret_payload") {
		t.Error("view must not expose recorded step output")
	}
}
