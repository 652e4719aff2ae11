package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

// defaultMaxProfiles — максимум профилей на шаг обогащения,
// если план не задал свой.
const defaultMaxProfiles = 25

// EnrichExecutor — исполнитель шагов ENRICH_PROFILE.
type EnrichExecutor struct {
	Client Enricher
}

// Kind реализует Executor.
func (e *EnrichExecutor) Kind() domain.StepKind { return domain.StepKindEnrichProfile }

// Execute обогащает профили из результата шага-источника.
// Отказ по одному профилю фиксируется в записи и шаг не валит.
func (e *EnrichExecutor) Execute(ctx context.Context, step *domain.Step, state State) (*Result, error) {
	params, ok := step.Params.(domain.EnrichProfileParams)
	if !ok {
		return nil, paramsMismatch(step)
	}

	records, err := sourceRecords(state, params.SourceStepID)
	if err != nil {
		return nil, err
	}

	max := params.MaxProfiles
	if max <= 0 {
		max = defaultMaxProfiles
	}
	usernames := ExtractUsernames(records, params.UsernameField, max)
	if len(usernames) == 0 {
		return nil, fmt.Errorf("step %q produced no usernames: %w", params.SourceStepID, ErrEmptySource)
	}

	started := time.Now()
	out := make([]domain.Record, 0, len(usernames))
	failed := 0
	for _, username := range usernames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		profile, err := e.Client.EnrichProfile(ctx, username)
		if err != nil {
			failed++
			out = append(out, domain.Record{
				"username": username,
				"error":    err.Error(),
			})
			continue
		}
		out = append(out, domain.Record{
			"username":   profile.Username,
			"raw_text":   profile.RawText,
			"fetched_at": time.Now().UTC().Format(time.RFC3339),
		})
	}

	summary := fmt.Sprintf("enriched %d/%d profiles in %s",
		len(usernames)-failed, len(usernames), time.Since(started).Round(time.Millisecond))

	return &Result{
		Output: &domain.StepOutput{
			Records: out,
			Meta:    map[string]any{"requested": len(usernames), "failed": failed},
		},
		Summary: summary,
	}, nil
}
