package engine

import (
	"fmt"

	"github.com/shaiso/Prospector/internal/domain"
)

// ValidateRefs выполняет семантическую валидацию ссылок между шагами:
// каждый sourceStepId / sourceStepIds должен называть шаг, существующий
// где-либо в плане. Висячая ссылка — ошибка с указанием ссылающегося
// шага и отсутствующей цели.
//
// Порядок намеренно не проверяется: ссылка на шаг, стоящий позже в
// массиве, проходит валидацию и упадёт во время выполнения, когда
// результата ещё нет.
func ValidateRefs(plan *domain.Plan) error {
	ids := make(map[string]bool, len(plan.Steps))
	for i := range plan.Steps {
		ids[plan.Steps[i].ID] = true
	}

	for i := range plan.Steps {
		step := &plan.Steps[i]
		for _, src := range step.SourceStepIDs() {
			if !ids[src] {
				return NewValidationError(step.ID, "params.sourceStepId",
					fmt.Sprintf("step %q references unknown step %q", step.ID, src),
					ErrMissingSourceStep)
			}
		}
	}

	return nil
}

// Dependencies возвращает для каждого шага список шагов, от результатов
// которых он зависит. Карта используется только вспомогательно
// (например, FindCycle); порядок выполнения определяется массивом Steps,
// а не этим графом.
func Dependencies(plan *domain.Plan) map[string][]string {
	deps := make(map[string][]string, len(plan.Steps))
	for i := range plan.Steps {
		step := &plan.Steps[i]
		deps[step.ID] = step.SourceStepIDs()
	}
	return deps
}

// Состояния узла при обходе в глубину.
const (
	nodeUnvisited = iota
	nodeVisiting
	nodeVisited
)

// FindCycle ищет цикл в графе зависимостей обходом в глубину,
// помечая узлы visiting/visited. Возвращает первый найденный цикл
// как упорядоченный список id (без повторения замыкающего узла)
// или nil, если граф ацикличен.
//
// Валидатор этот обход не вызывает: проверка опциональна,
// вызывающая сторона подключает её сама.
func FindCycle(plan *domain.Plan) []string {
	deps := Dependencies(plan)

	state := make(map[string]int, len(plan.Steps))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = nodeVisiting
		stack = append(stack, id)

		for _, dep := range deps[id] {
			switch state[dep] {
			case nodeVisiting:
				// Цикл: срез стека от первого вхождения dep.
				for i, v := range stack {
					if v == dep {
						cycle = append(cycle, stack[i:]...)
						break
					}
				}
				return true
			case nodeUnvisited:
				if visit(dep) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = nodeVisited
		return false
	}

	for i := range plan.Steps {
		id := plan.Steps[i].ID
		if state[id] == nodeUnvisited {
			if visit(id) {
				return cycle
			}
		}
	}

	return nil
}
