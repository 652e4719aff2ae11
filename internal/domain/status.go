package domain

// StepStatus — статус выполнения шага плана.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCESS
//	                  ↘ ERROR
//
// Переходы односторонние: шаг не возвращается в RUNNING
// после достижения терминального статуса.
type StepStatus string

const (
	// StepStatusPending — шаг создан, но ещё не начал выполняться.
	StepStatusPending StepStatus = "PENDING"

	// StepStatusRunning — шаг выполняется движком.
	StepStatusRunning StepStatus = "RUNNING"

	// StepStatusSuccess — шаг успешно завершён.
	StepStatusSuccess StepStatus = "SUCCESS"

	// StepStatusError — шаг завершился с ошибкой.
	StepStatusError StepStatus = "ERROR"

	// StepStatusSkipped — зарезервирован для условного выполнения.
	// Движок сегодня не присваивает этот статус.
	StepStatusSkipped StepStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус финальный (шаг завершён).
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusSuccess, StepStatusError, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет допустимость перехода между статусами.
func (s StepStatus) CanTransitionTo(next StepStatus) bool {
	switch s {
	case StepStatusPending:
		return next == StepStatusRunning || next == StepStatusSkipped
	case StepStatusRunning:
		return next == StepStatusSuccess || next == StepStatusError
	default:
		return false
	}
}
