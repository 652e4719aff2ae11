// Package planner превращает цель в свободной форме в план выполнения.
//
// План пишет LLM; ответ модели — недоверенный вход и проходит полную
// валидацию движка перед тем, как попасть в хранилище.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/engine"
)

// Ошибки генерации плана.
var (
	// ErrEmptyObjective — пустая цель.
	ErrEmptyObjective = errors.New("objective is empty")

	// ErrEmptyCompletion — модель вернула пустой ответ.
	ErrEmptyCompletion = errors.New("model returned empty completion")
)

// Planner генерирует планы по цели.
type Planner struct {
	model  llms.Model
	logger *slog.Logger
}

// New создаёт планировщик.
func New(model llms.Model, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{model: model, logger: logger}
}

// GeneratePlan запрашивает у модели план и валидирует его теми же
// правилами, что и план, присланный клиентом.
func (p *Planner) GeneratePlan(ctx context.Context, objective string) (*domain.Plan, error) {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		return nil, ErrEmptyObjective
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(planSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart("Objective: " + objective)},
		},
	}

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(2000),
	)
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, ErrEmptyCompletion
	}

	raw := ensurePlanID([]byte(ExtractJSON(resp.Choices[0].Content)))

	plan, err := engine.ParsePlan(raw)
	if err != nil {
		p.logger.Warn("model produced invalid plan", "error", err, "objective", objective)
		return nil, fmt.Errorf("model produced invalid plan: %w", err)
	}

	p.logger.Info("plan generated", "planId", plan.PlanID, "steps", len(plan.Steps))
	return plan, nil
}

// ExtractJSON убирает markdown-ограждение вокруг JSON: модели часто
// заворачивают ответ в блок ```json ... ``` вопреки инструкции.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// ensurePlanID подставляет сгенерированный id, если модель его не
// указала. Остальные пропуски остаются на совести валидации.
func ensurePlanID(raw []byte) []byte {
	var probe struct {
		PlanID string `json:"planId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || strings.TrimSpace(probe.PlanID) != "" {
		return raw
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	m["planId"] = "plan-" + uuid.NewString()[:8]

	patched, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return patched
}
