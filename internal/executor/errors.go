package executor

import (
	"errors"
	"fmt"

	"github.com/shaiso/Prospector/internal/domain"
)

// Ошибки исполнителей.
var (
	// ErrNoExecutor — для вида шага не зарегистрирован исполнитель.
	ErrNoExecutor = errors.New("no executor registered for step kind")

	// ErrParamsMismatch — вид шага не совпал с вариантом params.
	ErrParamsMismatch = errors.New("step params do not match step kind")

	// ErrNoSourceOutput — шаг-источник ещё не записал результат.
	ErrNoSourceOutput = errors.New("source step has no recorded output")

	// ErrEmptySource — результат источника не содержит пригодных записей.
	ErrEmptySource = errors.New("source output has no usable records")
)

// paramsMismatch — ошибка несовпадения варианта params с видом шага.
// Валидация не пропускает такие планы; проверка остаётся на случай
// планов, собранных программно в обход разбора.
func paramsMismatch(step *domain.Step) error {
	return fmt.Errorf("step %q: params variant %T does not match kind %s: %w",
		step.ID, step.Params, step.Kind, ErrParamsMismatch)
}
