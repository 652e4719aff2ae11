package api

// Планы отдаются наружу как domain.PlanView — представление без
// полных результатов шагов, отдельные DTO им не нужны.

// GeneratePlanRequest — запрос на генерацию плана из цели.
type GeneratePlanRequest struct {
	Objective string `json:"objective"`
}

// ValidationReport — результат успешной валидации плана.
// Warnings — не ошибки: план валиден, но при выполнении
// перечисленное приведёт к ошибкам шагов.
type ValidationReport struct {
	Valid     bool     `json:"valid"`
	PlanID    string   `json:"planId"`
	Objective string   `json:"objective"`
	Steps     int      `json:"steps"`
	Warnings  []string `json:"warnings,omitempty"`
}
