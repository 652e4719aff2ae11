package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

// ReportExecutor — исполнитель шагов REPORT.
type ReportExecutor struct {
	Writer ReportWriter
}

// Kind реализует Executor.
func (e *ReportExecutor) Kind() domain.StepKind { return domain.StepKindReport }

// Execute сводит записи шагов-источников в CSV-отчёт. Источники
// обходятся в порядке перечисления; запись проецируется на колонки
// отчёта, отсутствующие поля остаются пустыми.
func (e *ReportExecutor) Execute(ctx context.Context, step *domain.Step, state State) (*Result, error) {
	params, ok := step.Params.(domain.ReportParams)
	if !ok {
		return nil, paramsMismatch(step)
	}

	started := time.Now()

	var rows []map[string]string
	var merged []domain.Record
	for _, src := range params.SourceStepIDs {
		records, err := sourceRecords(state, src)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			row := make(map[string]string, len(params.Columns))
			for _, col := range params.Columns {
				if v, ok := rec[col]; ok && v != nil {
					row[col] = fmt.Sprint(v)
				} else {
					row[col] = ""
				}
			}
			rows = append(rows, row)

			projected := make(domain.Record, len(row))
			for k, v := range row {
				projected[k] = v
			}
			merged = append(merged, projected)
		}
	}

	filename := params.Filename
	if filename == "" {
		filename = step.ID + ".csv"
	}

	rec, err := e.Writer.WriteCSV(filename, params.Columns, rows, map[string]any{
		"planId":  state.PlanID(),
		"stepId":  step.ID,
		"sources": params.SourceStepIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	summary := fmt.Sprintf("wrote %d rows x %d columns to %s (%d bytes) in %s",
		len(rows), len(params.Columns), rec.Filename, rec.Bytes,
		time.Since(started).Round(time.Millisecond))

	return &Result{
		Output: &domain.StepOutput{
			Records: merged,
			Meta: map[string]any{
				"artifactId": rec.ID,
				"rowCount":   len(rows),
			},
		},
		Summary:   summary,
		Artifacts: []domain.ArtifactRecord{*rec},
	}, nil
}
