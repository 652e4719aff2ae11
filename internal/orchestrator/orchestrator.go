package orchestrator

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/executor"
	"github.com/shaiso/Prospector/internal/registry"
)

// DefaultSnippetLimit — максимум записей в сниппете step_result.
const DefaultSnippetLimit = 5

// EventSink — получатель событий выполнения. Вызывается синхронно из
// горутины прогона: медленные или отказывающие приёмники оборачиваются
// в stream.Relay, чтобы не тормозить движок и не останавливать план.
type EventSink interface {
	Send(event domain.Event)
}

// NopSink отбрасывает события. Используется, когда прогон запущен
// без подписчика.
type NopSink struct{}

// Send реализует EventSink.
func (NopSink) Send(domain.Event) {}

// Options — настройки одного прогона.
type Options struct {
	// Sink — получатель событий; nil означает NopSink.
	Sink EventSink

	// SnippetLimit — максимум записей в сниппете step_result;
	// 0 — значение по умолчанию, отрицательное — без ограничения.
	SnippetLimit int
}

// Engine — движок выполнения планов.
//
// Движок не владеет транспортом: события уходят в переданный
// EventSink, план и результаты шагов живут в registry.Store.
// Один план выполняется не более чем одним прогоном одновременно.
type Engine struct {
	store     registry.Store
	executors *executor.Registry
	logger    *slog.Logger

	// active — планы в процессе выполнения (planID → прогон идёт).
	mu     sync.Mutex
	active map[string]struct{}
}

// Config — конфигурация движка.
type Config struct {
	// Store — хранилище планов и результатов шагов.
	Store registry.Store

	// Executors — исполнители по видам шагов.
	Executors *executor.Registry

	// Logger — опционально; nil означает slog.Default().
	Logger *slog.Logger
}

// New создаёт движок выполнения.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if cfg.Executors == nil {
		return nil, errors.New("orchestrator: executor registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:     cfg.Store,
		executors: cfg.Executors,
		logger:    logger,
		active:    make(map[string]struct{}),
	}, nil
}

// acquire помечает план выполняющимся.
func (e *Engine) acquire(planID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.active[planID]; exists {
		return ErrPlanAlreadyRunning
	}
	e.active[planID] = struct{}{}
	return nil
}

// release снимает пометку выполнения.
func (e *Engine) release(planID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, planID)
}

// ActivePlansCount возвращает число выполняемых планов.
func (e *Engine) ActivePlansCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}
