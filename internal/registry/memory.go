package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/engine"
)

// Memory — хранилище планов в памяти процесса.
//
// Снимки неизменяемы: Update клонирует план, применяет изменение к
// копии и подменяет указатель под блокировкой. Снимок, выданный Get
// до обновления, после него не меняется.
type Memory struct {
	mu    sync.RWMutex
	plans map[string]*domain.StoredPlan
	order []string // id в порядке сохранения
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{
		plans: make(map[string]*domain.StoredPlan),
	}
}

// Save реализует Store.
func (m *Memory) Save(_ context.Context, plan *domain.Plan) (*domain.StoredPlan, error) {
	if err := engine.Validate(plan); err != nil {
		return nil, err
	}
	if err := engine.ValidateRefs(plan); err != nil {
		return nil, err
	}

	stored := &domain.StoredPlan{
		Plan:        *plan,
		StoredAt:    time.Now().UTC(),
		StepOutputs: make(map[string]*domain.StepOutput),
	}
	stored.Steps = make([]domain.Step, len(plan.Steps))
	copy(stored.Steps, plan.Steps)
	engine.ApplyDefaults(&stored.Plan)

	m.mu.Lock()
	defer m.mu.Unlock()

	id := stored.PlanID
	for n := 2; ; n++ {
		if _, taken := m.plans[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", stored.PlanID, n)
	}
	stored.PlanID = id

	m.plans[id] = stored
	m.order = append(m.order, id)

	return stored, nil
}

// Get реализует Store.
func (m *Memory) Get(_ context.Context, planID string) (*domain.StoredPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planID, ErrPlanNotFound)
	}
	return stored, nil
}

// List реализует Store.
func (m *Memory) List(_ context.Context) ([]*domain.StoredPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.StoredPlan, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.plans[m.order[i]])
	}
	return out, nil
}

// Update реализует Store.
func (m *Memory) Update(_ context.Context, planID string, mutate func(*domain.StoredPlan) error) (*domain.StoredPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planID, ErrPlanNotFound)
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	m.plans[planID] = next
	return next, nil
}

// RecordStepOutput реализует Store.
func (m *Memory) RecordStepOutput(ctx context.Context, planID, stepID string, output *domain.StepOutput) error {
	_, err := m.Update(ctx, planID, func(sp *domain.StoredPlan) error {
		if _, ok := sp.Step(stepID); !ok {
			return fmt.Errorf("plan %q step %q: %w", planID, stepID, ErrStepNotFound)
		}
		sp.StepOutputs[stepID] = output
		return nil
	})
	return err
}

// SetStepStatus реализует Store.
func (m *Memory) SetStepStatus(ctx context.Context, planID, stepID string, status domain.StepStatus, extra *StatusExtra) error {
	_, err := m.Update(ctx, planID, func(sp *domain.StoredPlan) error {
		step, ok := sp.Step(stepID)
		if !ok {
			return fmt.Errorf("plan %q step %q: %w", planID, stepID, ErrStepNotFound)
		}
		if !step.Status.CanTransitionTo(status) {
			return fmt.Errorf("plan %q step %q: %s -> %s: %w",
				planID, stepID, step.Status, status, ErrInvalidTransition)
		}

		switch {
		case status == domain.StepStatusRunning:
			step.MarkRunning()
		case status.IsTerminal():
			step.MarkTerminal(status)
		default:
			step.Status = status
		}

		if extra != nil {
			if extra.Error != "" {
				step.Error = extra.Error
			}
			if extra.OutputSummary != "" {
				step.OutputSummary = extra.OutputSummary
			}
			if len(extra.ArtifactIDs) > 0 {
				step.ProducedArtifactIDs = append(step.ProducedArtifactIDs, extra.ArtifactIDs...)
			}
			if extra.Snippet != nil {
				step.ResultSnippet = extra.Snippet
			}
		}
		return nil
	})
	return err
}
