package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/profiledb"
)

// QueryDataExecutor — исполнитель шагов QUERY_DATA.
type QueryDataExecutor struct {
	Source ProfileSource
}

// Kind реализует Executor.
func (e *QueryDataExecutor) Kind() domain.StepKind { return domain.StepKindQueryData }

// Execute выполняет именованную выборку профилей.
func (e *QueryDataExecutor) Execute(ctx context.Context, step *domain.Step, _ State) (*Result, error) {
	params, ok := step.Params.(domain.QueryDataParams)
	if !ok {
		return nil, paramsMismatch(step)
	}

	started := time.Now()
	res, err := e.Source.Query(ctx, profiledb.QueryRequest{
		Intent:  params.Intent,
		Limit:   params.Limit,
		Filters: params.Filters,
	})
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("fetched %d profiles via %q in %s",
		res.RowCount, params.Intent, time.Since(started).Round(time.Millisecond))
	if res.Warning != "" {
		summary += " (" + res.Warning + ")"
	}

	meta := map[string]any{
		"intent":    params.Intent,
		"rowCount":  res.RowCount,
		"truncated": res.Truncated,
	}
	if res.Warning != "" {
		meta["warning"] = res.Warning
	}

	return &Result{
		Output:  &domain.StepOutput{Records: res.Rows, Meta: meta},
		Summary: summary,
	}, nil
}
