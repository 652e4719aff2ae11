package engine

import "errors"

// Ошибки разбора и валидации плана.
var (
	// ErrMalformedJSON — вход не является корректным JSON-объектом плана.
	ErrMalformedJSON = errors.New("plan is not valid JSON")

	// ErrEmptyPlanID — план не имеет planId.
	ErrEmptyPlanID = errors.New("plan has empty planId")

	// ErrEmptyObjective — план не имеет objective.
	ErrEmptyObjective = errors.New("plan has empty objective")

	// ErrEmptySteps — план не содержит шагов.
	ErrEmptySteps = errors.New("plan has no steps")

	// ErrEmptyStepID — шаг не имеет id.
	ErrEmptyStepID = errors.New("step has empty id")

	// ErrDuplicateStepID — несколько шагов с одинаковым id.
	ErrDuplicateStepID = errors.New("duplicate step id")

	// ErrUnknownStepKind — неизвестный вид шага.
	ErrUnknownStepKind = errors.New("unknown step kind")

	// ErrEmptyStepTitle — шаг не имеет title.
	ErrEmptyStepTitle = errors.New("step has empty title")

	// ErrInvalidParams — параметры шага не соответствуют его виду.
	ErrInvalidParams = errors.New("invalid step params")

	// ErrMissingSourceStep — params ссылаются на несуществующий шаг.
	ErrMissingSourceStep = errors.New("references unknown step")

	// ErrCyclicDependency — обнаружен цикл в зависимостях шагов.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	StepID  string // id шага, где произошла ошибка; пустой — уровень плана
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.StepID != "" {
		return "step " + e.StepID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(stepID, field, message string, err error) *ValidationError {
	return &ValidationError{
		StepID:  stepID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
