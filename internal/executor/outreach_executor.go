package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/outreach"
)

// defaultMaxMessages — максимум сообщений на шаг, если план не задал свой.
const defaultMaxMessages = 25

// OutreachExecutor — исполнитель шагов GENERATE_OUTREACH.
type OutreachExecutor struct {
	Generator MessageGenerator
}

// Kind реализует Executor.
func (e *OutreachExecutor) Kind() domain.StepKind { return domain.StepKindGenerateOutreach }

// Execute пишет по одному сообщению на запись шага-источника.
// Запись целиком уходит генератору: шаблону и модели доступны все
// поля получателя, а не только username.
func (e *OutreachExecutor) Execute(ctx context.Context, step *domain.Step, state State) (*Result, error) {
	params, ok := step.Params.(domain.GenerateOutreachParams)
	if !ok {
		return nil, paramsMismatch(step)
	}

	records, err := sourceRecords(state, params.SourceStepID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("step %q produced no records: %w", params.SourceStepID, ErrEmptySource)
	}

	max := params.MaxMessages
	if max <= 0 {
		max = defaultMaxMessages
	}
	if len(records) > max {
		records = records[:max]
	}

	started := time.Now()
	out := make([]domain.Record, 0, len(records))
	failed := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		username := usernameFrom(rec, "")
		message, err := e.Generator.Generate(ctx, outreach.Request{
			Recipient:    rec,
			Template:     params.MessageTemplate,
			Tone:         params.Tone,
			CompanyName:  params.CompanyName,
			SenderName:   params.SenderName,
			CustomPrompt: params.CustomPrompt,
		})
		if err != nil {
			failed++
			out = append(out, domain.Record{
				"username": username,
				"error":    err.Error(),
			})
			continue
		}
		out = append(out, domain.Record{
			"username": username,
			"message":  message,
		})
	}

	summary := fmt.Sprintf("generated %d/%d messages in %s",
		len(records)-failed, len(records), time.Since(started).Round(time.Millisecond))

	return &Result{
		Output: &domain.StepOutput{
			Records: out,
			Meta:    map[string]any{"requested": len(records), "failed": failed},
		},
		Summary: summary,
	}, nil
}
