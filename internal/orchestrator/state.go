package orchestrator

import (
	"fmt"

	"github.com/shaiso/Prospector/internal/domain"
)

// stateView — взгляд исполнителя на выполняемый план: идентификатор
// плана и результаты шагов из снимка, взятого на границе шага.
// Снимки хранилища неизменяемы, поэтому синхронизация не нужна.
type stateView struct {
	planID  string
	outputs map[string]*domain.StepOutput
}

// PlanID реализует executor.State.
func (v stateView) PlanID() string { return v.planID }

// Output реализует executor.State.
func (v stateView) Output(stepID string) (*domain.StepOutput, bool) {
	out, ok := v.outputs[stepID]
	return out, ok
}

// runnable проверяет, что ни один шаг плана ещё не выполнялся.
// План — одноразовый: повторный прогон после частичного или полного
// выполнения запрещён, для повтора создаётся новый план.
func runnable(stored *domain.StoredPlan) error {
	for i := range stored.Steps {
		if status := stored.Steps[i].Status; status != domain.StepStatusPending {
			return fmt.Errorf("step %s is %s: %w", stored.Steps[i].ID, status, ErrPlanAlreadyExecuted)
		}
	}
	return nil
}

// countOutcomes возвращает число успешных и упавших шагов.
func countOutcomes(stored *domain.StoredPlan) (succeeded, failed int) {
	for i := range stored.Steps {
		switch stored.Steps[i].Status {
		case domain.StepStatusSuccess:
			succeeded++
		case domain.StepStatusError:
			failed++
		}
	}
	return succeeded, failed
}
