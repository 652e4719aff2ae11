package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/orchestrator"
	"github.com/shaiso/Prospector/internal/stream"
)

// ExecutePlan выполняет план и стримит события прогона как SSE.
// POST /api/v1/plans/{id}/execute?snippet_limit=N
func (h *Handler) ExecutePlan(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")

	// Ошибки, известные до старта, отдаются обычным JSON: после
	// первого байта стрима сменить статус ответа уже нельзя.
	stored, err := h.store.Get(r.Context(), planID)
	if HandleStoreError(w, h.logger, err, "plan not found") {
		return
	}
	for i := range stored.Steps {
		if stored.Steps[i].Status != domain.StepStatusPending {
			Conflict(w, orchestrator.ErrPlanAlreadyExecuted.Error())
			return
		}
	}

	snippetLimit := 0
	if v := r.URL.Query().Get("snippet_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			BadRequest(w, "snippet_limit must be an integer")
			return
		}
		snippetLimit = n
	}

	sse, err := stream.NewSSEStream(w, stream.SSEConfig{
		OnError: func(err error) {
			h.logger.Warn("sse client lost", "plan_id", planID, "error", err)
		},
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Очередь между движком и клиентом: медленный клиент упирается в
	// буфер, мёртвый — отключается, не останавливая выполнение.
	relay := stream.NewRelay(stream.SinkFunc(sse.Send), stream.RelayConfig{})

	var sink orchestrator.EventSink = relay
	var mirror *stream.Relay
	if h.publisher != nil {
		// Зеркало в RabbitMQ живёт на собственной очереди: отказ
		// брокера не трогает ни выполнение, ни SSE-стрим.
		mirror = stream.NewRelay(stream.SinkFunc(func(event domain.Event) error {
			return h.publisher.PublishPlanEvent(context.Background(), event)
		}), stream.RelayConfig{
			OnError: func(err error) {
				h.logger.Warn("event mirror failed", "plan_id", planID, "error", err)
			},
		})
		sink = fanout{relay, mirror}
	}

	_, runErr := h.engine.Run(r.Context(), planID, orchestrator.Options{
		Sink:         sink,
		SnippetLimit: snippetLimit,
	})

	relay.Close()
	if mirror != nil {
		mirror.Close()
	}

	if runErr != nil {
		h.logger.Error("plan run failed", "plan_id", planID, "error", runErr)
		if !errors.Is(runErr, context.Canceled) {
			_ = sse.Send(domain.NewEvent(domain.EventPlanError, domain.PlanErrorPayload{
				PlanID:  planID,
				Message: runErr.Error(),
			}))
		}
	}

	sse.Close()
}

// fanout дублирует события нескольким приёмникам.
type fanout []orchestrator.EventSink

// Send реализует orchestrator.EventSink.
func (f fanout) Send(event domain.Event) {
	for _, s := range f {
		s.Send(event)
	}
}
