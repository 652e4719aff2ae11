package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/executor"
	"github.com/shaiso/Prospector/internal/registry"
	"github.com/shaiso/Prospector/internal/telemetry"
)

// Run выполняет план от первого шага до конца или до первой ошибки.
//
// Порядок событий фиксирован: plan_started, затем на каждый шаг
// step_started и step_result (плюс artifact_ready на каждый артефакт),
// в конце plan_completed. Ошибка шага добавляет plan_error после
// step_result и останавливает прогон; plan_completed публикуется и в
// этом случае. Отмена контекста проверяется на границах шагов: уже
// начатый шаг дорабатывает, прерванный прогон завершается ошибкой
// без plan_completed.
func (e *Engine) Run(ctx context.Context, planID string, opts Options) (*domain.PlanView, error) {
	sink := opts.Sink
	if sink == nil {
		sink = NopSink{}
	}
	snippetLimit := opts.SnippetLimit
	if snippetLimit == 0 {
		snippetLimit = DefaultSnippetLimit
	}

	if err := e.acquire(planID); err != nil {
		return nil, err
	}
	defer e.release(planID)

	stored, err := e.store.Get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if err := runnable(stored); err != nil {
		return nil, err
	}

	logger := telemetry.WithPlanID(e.logger, planID)
	logger.Info("plan started",
		"objective", stored.Objective,
		"steps", len(stored.Steps),
	)
	telemetry.PlansStarted.Inc()

	startedAt := time.Now()
	e.emit(sink, domain.NewEvent(domain.EventPlanStarted, domain.PlanStartedPayload{
		PlanID:     planID,
		Objective:  stored.Objective,
		TotalSteps: len(stored.Steps),
	}))

	outcome := "success"
	for i := 0; i < len(stored.Steps); i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warn("plan canceled", "next_step_index", i)
			telemetry.PlansCompleted.WithLabelValues("canceled").Inc()
			return nil, fmt.Errorf("plan %s canceled before step %d: %w", planID, i, ctxErr)
		}

		// Свежий снимок: результаты предыдущих шагов уже записаны.
		snapshot, err := e.store.Get(ctx, planID)
		if err != nil {
			return nil, fmt.Errorf("reload plan: %w", err)
		}

		halted, err := e.runStep(ctx, sink, snapshot, i, snippetLimit, logger)
		if err != nil {
			return nil, err
		}
		if halted {
			outcome = "halted"
			break
		}
	}

	final, err := e.store.Get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load final plan: %w", err)
	}
	succeeded, failed := countOutcomes(final)

	// finalStatus фиксирует факт завершения прогона, а не успех всех
	// шагов: остановка по ошибке различима по plan_error и по
	// succeeded/failed.
	e.emit(sink, domain.NewEvent(domain.EventPlanCompleted, domain.PlanCompletedPayload{
		PlanID:      planID,
		FinalStatus: "SUCCESS",
		Succeeded:   succeeded,
		Failed:      failed,
		DurationMs:  time.Since(startedAt).Milliseconds(),
	}))
	telemetry.PlansCompleted.WithLabelValues(outcome).Inc()

	logger.Info("plan completed",
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	return final.View(), nil
}

// runStep выполняет один шаг плана. halted = true означает ошибку
// шага: прогон останавливается, но завершается штатно. Ненулевая
// ошибка — отказ хранилища, прогон обрывается.
func (e *Engine) runStep(
	ctx context.Context,
	sink EventSink,
	snapshot *domain.StoredPlan,
	index int,
	snippetLimit int,
	logger *slog.Logger,
) (halted bool, err error) {
	step := snapshot.Steps[index]
	stepLogger := telemetry.WithStepID(logger, step.ID)

	if err := e.store.SetStepStatus(ctx, snapshot.PlanID, step.ID, domain.StepStatusRunning, nil); err != nil {
		return false, fmt.Errorf("mark step %s running: %w", step.ID, err)
	}

	stepLogger.Info("step started", "kind", step.Kind, "index", index)
	e.emit(sink, domain.NewEvent(domain.EventStepStarted, domain.StepStartedPayload{
		PlanID: snapshot.PlanID,
		StepID: step.ID,
		Kind:   step.Kind,
		Title:  step.Title,
		Index:  index,
	}))

	startedAt := time.Now()
	result, execErr := e.execute(ctx, &step, stateView{
		planID:  snapshot.PlanID,
		outputs: snapshot.StepOutputs,
	})
	duration := time.Since(startedAt)
	telemetry.StepDuration.WithLabelValues(string(step.Kind)).Observe(duration.Seconds())

	if execErr != nil {
		stepLogger.Error("step failed",
			"kind", step.Kind,
			"error", execErr,
			"duration_ms", duration.Milliseconds(),
		)
		telemetry.StepsExecuted.WithLabelValues(string(step.Kind), string(domain.StepStatusError)).Inc()

		extra := &registry.StatusExtra{Error: execErr.Error()}
		if err := e.store.SetStepStatus(ctx, snapshot.PlanID, step.ID, domain.StepStatusError, extra); err != nil {
			return false, fmt.Errorf("mark step %s failed: %w", step.ID, err)
		}

		e.emit(sink, domain.NewEvent(domain.EventStepResult, domain.StepResultPayload{
			PlanID:     snapshot.PlanID,
			StepID:     step.ID,
			Kind:       step.Kind,
			Status:     domain.StepStatusError,
			Error:      execErr.Error(),
			DurationMs: duration.Milliseconds(),
		}))
		e.emit(sink, domain.NewEvent(domain.EventPlanError, domain.PlanErrorPayload{
			PlanID:  snapshot.PlanID,
			StepID:  step.ID,
			Message: execErr.Error(),
		}))
		return true, nil
	}

	if err := e.store.RecordStepOutput(ctx, snapshot.PlanID, step.ID, result.Output); err != nil {
		return false, fmt.Errorf("record step %s output: %w", step.ID, err)
	}

	snippet := result.Snippet(snippetLimit)
	artifactIDs := make([]string, 0, len(result.Artifacts))
	for i := range result.Artifacts {
		artifactIDs = append(artifactIDs, result.Artifacts[i].ID)
	}

	extra := &registry.StatusExtra{
		OutputSummary: result.Summary,
		ArtifactIDs:   artifactIDs,
		Snippet:       snippet,
	}
	if err := e.store.SetStepStatus(ctx, snapshot.PlanID, step.ID, domain.StepStatusSuccess, extra); err != nil {
		return false, fmt.Errorf("mark step %s succeeded: %w", step.ID, err)
	}

	stepLogger.Info("step succeeded",
		"kind", step.Kind,
		"summary", result.Summary,
		"duration_ms", duration.Milliseconds(),
	)
	telemetry.StepsExecuted.WithLabelValues(string(step.Kind), string(domain.StepStatusSuccess)).Inc()

	e.emit(sink, domain.NewEvent(domain.EventStepResult, domain.StepResultPayload{
		PlanID:     snapshot.PlanID,
		StepID:     step.ID,
		Kind:       step.Kind,
		Status:     domain.StepStatusSuccess,
		Summary:    result.Summary,
		Snippet:    snippet,
		DurationMs: duration.Milliseconds(),
	}))
	for i := range result.Artifacts {
		e.emit(sink, domain.NewEvent(domain.EventArtifactReady, domain.ArtifactReadyPayload{
			PlanID:   snapshot.PlanID,
			StepID:   step.ID,
			Artifact: result.Artifacts[i],
		}))
	}

	return false, nil
}

// execute находит исполнителя и выполняет шаг.
func (e *Engine) execute(ctx context.Context, step *domain.Step, state stateView) (*executor.Result, error) {
	exec, err := e.executors.ForKind(step.Kind)
	if err != nil {
		return nil, err
	}

	result, err := exec.Execute(ctx, step, state)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNoResult
	}
	return result, nil
}

// emit отправляет событие приёмнику и учитывает его в метриках.
func (e *Engine) emit(sink EventSink, event domain.Event) {
	sink.Send(event)
	telemetry.EventsPublished.WithLabelValues(string(event.Type)).Inc()
}
