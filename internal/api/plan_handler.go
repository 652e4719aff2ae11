package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/engine"
	"github.com/shaiso/Prospector/internal/planner"
)

// maxPlanBytes — предел размера тела с планом. Планы — небольшие
// JSON-документы; мегабайта достаточно с запасом.
const maxPlanBytes = 1 << 20

// ListPlans возвращает список планов, новые первыми.
// GET /api/v1/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.List(r.Context())
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	result := make([]*domain.PlanView, len(plans))
	for i, p := range plans {
		result[i] = p.View()
	}

	List(w, result, len(result))
}

// SubmitPlan принимает сырой JSON плана, валидирует и сохраняет его.
// POST /api/v1/plans
func (h *Handler) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.readPlan(w, r)
	if !ok {
		return
	}

	stored, err := h.store.Save(r.Context(), plan)
	if err != nil {
		ValidationFailed(w, err)
		return
	}

	h.logger.Info("plan submitted",
		"plan_id", stored.PlanID,
		"steps", len(stored.Steps),
	)

	Created(w, stored.View())
}

// ValidatePlan проверяет план без сохранения.
// POST /api/v1/plans/validate
func (h *Handler) ValidatePlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.readPlan(w, r)
	if !ok {
		return
	}

	if err := engine.ValidateRefs(plan); err != nil {
		ValidationFailed(w, err)
		return
	}

	report := ValidationReport{
		Valid:     true,
		PlanID:    plan.PlanID,
		Objective: plan.Objective,
		Steps:     len(plan.Steps),
	}

	// Цикл зависимостей валидацию не проваливает: ссылки существуют.
	// Но первый шаг цикла упадёт на отсутствующем результате,
	// поэтому предупреждаем заранее.
	if cycle := engine.FindCycle(plan); cycle != nil {
		report.Warnings = append(report.Warnings,
			"dependency cycle: "+strings.Join(cycle, " -> "))
	}

	Success(w, report)
}

// GeneratePlan строит план по цели через LLM, валидирует и сохраняет.
// POST /api/v1/plans/generate
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	if h.planner == nil {
		Unavailable(w, "plan generation is not configured")
		return
	}

	var req GeneratePlanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPlanBytes)).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Objective) == "" {
		BadRequest(w, "objective is required")
		return
	}

	plan, err := h.planner.GeneratePlan(r.Context(), req.Objective)
	if err != nil {
		if errors.Is(err, planner.ErrEmptyCompletion) || isValidationError(err) {
			ValidationFailed(w, err)
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	stored, err := h.store.Save(r.Context(), plan)
	if err != nil {
		ValidationFailed(w, err)
		return
	}

	h.logger.Info("plan generated",
		"plan_id", stored.PlanID,
		"objective", req.Objective,
		"steps", len(stored.Steps),
	)

	Created(w, stored.View())
}

// GetPlan возвращает план по идентификатору.
// GET /api/v1/plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.Get(r.Context(), r.PathValue("id"))
	if HandleStoreError(w, h.logger, err, "plan not found") {
		return
	}

	Success(w, stored.View())
}

// readPlan читает и разбирает план из тела запроса. При ошибке пишет
// ответ и возвращает ok=false.
func (h *Handler) readPlan(w http.ResponseWriter, r *http.Request) (*domain.Plan, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPlanBytes))
	if err != nil {
		BadRequest(w, "cannot read request body")
		return nil, false
	}

	plan, err := engine.ParsePlan(raw)
	if err != nil {
		ValidationFailed(w, err)
		return nil, false
	}

	return plan, true
}

// isValidationError сообщает, является ли ошибка ошибкой валидации плана.
func isValidationError(err error) bool {
	var vErr *engine.ValidationError
	return errors.As(err, &vErr)
}
