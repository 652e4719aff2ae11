package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

// planWire и stepWire — форма JSON, приходящего от модели.
// Runtime-поля шага (status, startedAt и т.д.) здесь отсутствуют
// намеренно: их пишет только движок, источник плана подставить
// их не может.
type planWire struct {
	PlanID    string     `json:"planId"`
	Objective string     `json:"objective"`
	Steps     []stepWire `json:"steps"`
	Notes     string     `json:"notes"`
	CreatedAt *time.Time `json:"createdAt"`
}

type stepWire struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Params      json.RawMessage `json:"params"`
}

// ParsePlan разбирает план из JSON и выполняет обе стадии валидации:
// структурную (форма params выбирается по kind) и семантическую
// (ссылки sourceStepId указывают на существующие шаги).
//
// Возвращает либо полностью типизированный план, либо ошибку
// валидации с указанием шага и поля.
func ParsePlan(raw []byte) (*domain.Plan, error) {
	var wire planWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, NewValidationError("", "",
			fmt.Sprintf("malformed plan JSON: %v", err), ErrMalformedJSON)
	}

	plan, err := planFromWire(&wire)
	if err != nil {
		return nil, err
	}

	if err := ValidateRefs(plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// planFromWire строит типизированный план из wire-формы,
// попутно выполняя структурную валидацию.
func planFromWire(wire *planWire) (*domain.Plan, error) {
	if strings.TrimSpace(wire.PlanID) == "" {
		return nil, NewValidationError("", "planId", "planId is required", ErrEmptyPlanID)
	}
	if strings.TrimSpace(wire.Objective) == "" {
		return nil, NewValidationError("", "objective", "objective is required", ErrEmptyObjective)
	}
	if len(wire.Steps) == 0 {
		return nil, NewValidationError("", "steps", "plan has no steps", ErrEmptySteps)
	}

	plan := &domain.Plan{
		PlanID:    wire.PlanID,
		Objective: wire.Objective,
		Notes:     wire.Notes,
		CreatedAt: wire.CreatedAt,
		Steps:     make([]domain.Step, 0, len(wire.Steps)),
	}

	seen := make(map[string]bool, len(wire.Steps))

	for i, sw := range wire.Steps {
		if sw.ID == "" {
			return nil, NewValidationError("", "id",
				fmt.Sprintf("step at index %d has empty id", i), ErrEmptyStepID)
		}
		if seen[sw.ID] {
			return nil, NewValidationError(sw.ID, "id",
				fmt.Sprintf("duplicate step id: %s", sw.ID), ErrDuplicateStepID)
		}
		seen[sw.ID] = true

		kind := domain.StepKind(sw.Kind)
		if !kind.Valid() {
			return nil, NewValidationError(sw.ID, "kind",
				fmt.Sprintf("unknown step kind: %q", sw.Kind), ErrUnknownStepKind)
		}

		if strings.TrimSpace(sw.Title) == "" {
			return nil, NewValidationError(sw.ID, "title", "title is required", ErrEmptyStepTitle)
		}

		params, err := decodeParams(sw.ID, kind, sw.Params)
		if err != nil {
			return nil, err
		}

		plan.Steps = append(plan.Steps, domain.Step{
			ID:          sw.ID,
			Kind:        kind,
			Title:       sw.Title,
			Description: sw.Description,
			Params:      params,
		})
	}

	return plan, nil
}

// decodeParams выбирает вариант params по виду шага и проверяет его.
func decodeParams(stepID string, kind domain.StepKind, raw json.RawMessage) (domain.StepParams, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, NewValidationError(stepID, "params", "params are required", ErrInvalidParams)
	}

	var params domain.StepParams

	switch kind {
	case domain.StepKindQueryData:
		var p domain.QueryDataParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, paramsDecodeError(stepID, kind, err)
		}
		params = p
	case domain.StepKindEnrichProfile:
		var p domain.EnrichProfileParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, paramsDecodeError(stepID, kind, err)
		}
		params = p
	case domain.StepKindLinkedInResearch:
		var p domain.LinkedInResearchParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, paramsDecodeError(stepID, kind, err)
		}
		params = p
	case domain.StepKindGenerateOutreach:
		var p domain.GenerateOutreachParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, paramsDecodeError(stepID, kind, err)
		}
		params = p
	case domain.StepKindReport:
		var p domain.ReportParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, paramsDecodeError(stepID, kind, err)
		}
		params = p
	default:
		return nil, NewValidationError(stepID, "kind",
			fmt.Sprintf("unknown step kind: %q", kind), ErrUnknownStepKind)
	}

	if err := validateStepParams(stepID, params); err != nil {
		return nil, err
	}

	return params, nil
}

func paramsDecodeError(stepID string, kind domain.StepKind, err error) error {
	return NewValidationError(stepID, "params",
		fmt.Sprintf("invalid %s params: %v", kind, err), ErrInvalidParams)
}

// validateStepParams проверяет обязательные поля и диапазоны значений
// для каждого варианта params.
func validateStepParams(stepID string, params domain.StepParams) error {
	switch p := params.(type) {
	case domain.QueryDataParams:
		if strings.TrimSpace(p.Intent) == "" {
			return NewValidationError(stepID, "params.intent", "intent is required", ErrInvalidParams)
		}
		if p.Limit < 0 {
			return NewValidationError(stepID, "params.limit", "limit must not be negative", ErrInvalidParams)
		}
	case domain.EnrichProfileParams:
		if p.SourceStepID == "" {
			return NewValidationError(stepID, "params.sourceStepId", "sourceStepId is required", ErrInvalidParams)
		}
		if p.MaxProfiles < 0 {
			return NewValidationError(stepID, "params.maxProfiles", "maxProfiles must not be negative", ErrInvalidParams)
		}
	case domain.LinkedInResearchParams:
		if p.SourceStepID == "" {
			return NewValidationError(stepID, "params.sourceStepId", "sourceStepId is required", ErrInvalidParams)
		}
		if p.MaxProfiles < 0 {
			return NewValidationError(stepID, "params.maxProfiles", "maxProfiles must not be negative", ErrInvalidParams)
		}
	case domain.GenerateOutreachParams:
		if p.SourceStepID == "" {
			return NewValidationError(stepID, "params.sourceStepId", "sourceStepId is required", ErrInvalidParams)
		}
		if p.MaxMessages < 0 {
			return NewValidationError(stepID, "params.maxMessages", "maxMessages must not be negative", ErrInvalidParams)
		}
	case domain.ReportParams:
		if len(p.SourceStepIDs) == 0 {
			return NewValidationError(stepID, "params.sourceStepIds", "sourceStepIds must not be empty", ErrInvalidParams)
		}
		for i, id := range p.SourceStepIDs {
			if id == "" {
				return NewValidationError(stepID, "params.sourceStepIds",
					fmt.Sprintf("sourceStepIds[%d] is empty", i), ErrInvalidParams)
			}
		}
		if len(p.Columns) == 0 {
			return NewValidationError(stepID, "params.columns", "columns must not be empty", ErrInvalidParams)
		}
		if p.Format != "" && !strings.EqualFold(p.Format, "csv") {
			return NewValidationError(stepID, "params.format",
				fmt.Sprintf("unsupported format: %q", p.Format), ErrInvalidParams)
		}
	default:
		return NewValidationError(stepID, "params", "unsupported params variant", ErrInvalidParams)
	}

	return nil
}

// Validate выполняет структурную валидацию уже типизированного плана.
// Используется для планов, собранных программно, минуя ParsePlan.
func Validate(plan *domain.Plan) error {
	if plan == nil {
		return NewValidationError("", "", "plan is nil", ErrEmptySteps)
	}
	if strings.TrimSpace(plan.PlanID) == "" {
		return NewValidationError("", "planId", "planId is required", ErrEmptyPlanID)
	}
	if strings.TrimSpace(plan.Objective) == "" {
		return NewValidationError("", "objective", "objective is required", ErrEmptyObjective)
	}
	if len(plan.Steps) == 0 {
		return NewValidationError("", "steps", "plan has no steps", ErrEmptySteps)
	}

	seen := make(map[string]bool, len(plan.Steps))

	for i := range plan.Steps {
		step := &plan.Steps[i]

		if step.ID == "" {
			return NewValidationError("", "id",
				fmt.Sprintf("step at index %d has empty id", i), ErrEmptyStepID)
		}
		if seen[step.ID] {
			return NewValidationError(step.ID, "id",
				fmt.Sprintf("duplicate step id: %s", step.ID), ErrDuplicateStepID)
		}
		seen[step.ID] = true

		if !step.Kind.Valid() {
			return NewValidationError(step.ID, "kind",
				fmt.Sprintf("unknown step kind: %q", step.Kind), ErrUnknownStepKind)
		}
		if strings.TrimSpace(step.Title) == "" {
			return NewValidationError(step.ID, "title", "title is required", ErrEmptyStepTitle)
		}

		if step.Params == nil {
			return NewValidationError(step.ID, "params", "params are required", ErrInvalidParams)
		}
		if step.Params.ParamsKind() != step.Kind {
			return NewValidationError(step.ID, "params",
				fmt.Sprintf("params variant %s does not match step kind %s",
					step.Params.ParamsKind(), step.Kind), ErrInvalidParams)
		}
		if err := validateStepParams(step.ID, step.Params); err != nil {
			return err
		}
	}

	return nil
}

// ApplyDefaults проставляет runtime-значения по умолчанию:
// createdAt, если источник его не указал, и статус PENDING
// каждому шагу. Хранилище вызывает это над собственной копией плана,
// поэтому план вызывающей стороны не меняется.
func ApplyDefaults(plan *domain.Plan) {
	if plan.CreatedAt == nil {
		now := time.Now().UTC()
		plan.CreatedAt = &now
	}
	for i := range plan.Steps {
		plan.Steps[i].Status = domain.StepStatusPending
	}
}
