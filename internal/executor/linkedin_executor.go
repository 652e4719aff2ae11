package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

// LinkedInExecutor — исполнитель шагов LINKEDIN_RESEARCH.
type LinkedInExecutor struct {
	Client Researcher
}

// Kind реализует Executor.
func (e *LinkedInExecutor) Kind() domain.StepKind { return domain.StepKindLinkedInResearch }

// Execute запрашивает сводки по профилям из результата шага-источника.
// Как и при обогащении, отказ по одному профилю шаг не валит.
func (e *LinkedInExecutor) Execute(ctx context.Context, step *domain.Step, state State) (*Result, error) {
	params, ok := step.Params.(domain.LinkedInResearchParams)
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

		summary, err := e.Client.Research(ctx, username, params.Tags)
		if err != nil {
			failed++
			out = append(out, domain.Record{
				"username": username,
				"error":    err.Error(),
			})
			continue
		}
		out = append(out, domain.Record{
			"username":   summary.Username,
			"summary":    summary.Summary,
			"fetched_at": summary.FetchedAt,
		})
	}

	resultSummary := fmt.Sprintf("summarised %d/%d profiles in %s",
		len(usernames)-failed, len(usernames), time.Since(started).Round(time.Millisecond))

	meta := map[string]any{"requested": len(usernames), "failed": failed}
	if len(params.Tags) > 0 {
		meta["tags"] = params.Tags
	}

	return &Result{
		Output:  &domain.StepOutput{Records: out, Meta: meta},
		Summary: resultSummary,
	}, nil
}
