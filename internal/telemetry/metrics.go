package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики Prometheus. Регистрируются в DefaultRegisterer при загрузке
// пакета и отдаются через promhttp на /metrics.
var (
	// PlansStarted — число начатых прогонов планов.
	PlansStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prospector_plans_started_total",
		Help: "Total plan executions started",
	})

	// PlansCompleted — завершённые прогоны по исходу (success/halted/canceled).
	PlansCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prospector_plans_completed_total",
		Help: "Total plan executions finished, by outcome",
	}, []string{"outcome"})

	// StepsExecuted — шаги, достигшие терминального статуса.
	StepsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prospector_steps_executed_total",
		Help: "Total steps executed, by kind and terminal status",
	}, []string{"kind", "status"})

	// StepDuration — длительность выполнения шага по виду.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prospector_step_duration_seconds",
		Help:    "Step execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// EventsPublished — события жизненного цикла, отданные приёмникам.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prospector_events_published_total",
		Help: "Total lifecycle events published, by type",
	}, []string{"type"})

	// HTTPRequests — запросы к API по методу и коду ответа.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prospector_http_requests_total",
		Help: "Total HTTP requests handled, by method and status code",
	}, []string{"method", "status"})
)
