package orchestrator

import "errors"

// Ошибки движка выполнения.
var (
	// ErrPlanAlreadyRunning — план уже выполняется другим прогоном.
	ErrPlanAlreadyRunning = errors.New("plan is already running")

	// ErrPlanAlreadyExecuted — план уже выполнялся; повторный прогон
	// того же плана запрещён, нужен новый план.
	ErrPlanAlreadyExecuted = errors.New("plan has already been executed")

	// ErrNoResult — исполнитель вернул nil-результат без ошибки.
	ErrNoResult = errors.New("executor returned no result")
)
