package registry

import "errors"

// Ошибки хранилища планов.
var (
	// ErrPlanNotFound — план с таким id не найден.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrStepNotFound — шаг с таким id в плане отсутствует.
	ErrStepNotFound = errors.New("step not found")

	// ErrInvalidTransition — недопустимый переход статуса шага.
	ErrInvalidTransition = errors.New("invalid step status transition")
)
