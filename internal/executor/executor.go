package executor

import (
	"context"
	"fmt"

	"github.com/shaiso/Prospector/internal/domain"
	"github.com/shaiso/Prospector/internal/enrich"
	"github.com/shaiso/Prospector/internal/linkedin"
	"github.com/shaiso/Prospector/internal/outreach"
	"github.com/shaiso/Prospector/internal/profiledb"
)

// State — доступ исполнителя к контексту выполнения плана:
// идентификатору плана и накопленным результатам шагов.
type State interface {
	// PlanID возвращает id выполняемого плана.
	PlanID() string

	// Output возвращает полный результат ранее выполненного шага.
	Output(stepID string) (*domain.StepOutput, bool)
}

// Result — результат успешного выполнения шага.
type Result struct {
	// Output — полный результат; записывается в хранилище и доступен
	// зависимым шагам. Клиентам полный результат не отдаётся.
	Output *domain.StepOutput

	// Summary — однострочная сводка для клиента.
	Summary string

	// Artifacts — артефакты, созданные шагом; уже зарегистрированы
	// в реестре артефактов.
	Artifacts []domain.ArtifactRecord
}

// Snippet строит ограниченный предпросмотр полного результата.
// Правило одно для всех видов шагов: первые limit записей.
// limit <= 0 снимает ограничение.
func (r *Result) Snippet(limit int) *domain.Snippet {
	if r.Output == nil {
		return &domain.Snippet{Records: []domain.Record{}}
	}
	total := len(r.Output.Records)
	n := total
	if limit > 0 && limit < total {
		n = limit
	}
	records := make([]domain.Record, n)
	copy(records, r.Output.Records[:n])
	return &domain.Snippet{
		Records:      records,
		TotalRecords: total,
		Truncated:    n < total,
	}
}

// Executor выполняет шаги одного вида.
type Executor interface {
	// Kind — вид шага, который обслуживает исполнитель.
	Kind() domain.StepKind

	// Execute выполняет шаг.
	Execute(ctx context.Context, step *domain.Step, state State) (*Result, error)
}

// Зависимости исполнителей. Интерфейсы объявлены на стороне
// потребителя; продакшен-реализации живут в profiledb, enrich,
// linkedin, outreach и artifact.
type (
	// ProfileSource — выборка профилей из базы данных.
	ProfileSource interface {
		Query(ctx context.Context, req profiledb.QueryRequest) (*profiledb.QueryResult, error)
	}

	// Enricher — обогащение одного профиля внешним сервисом.
	Enricher interface {
		EnrichProfile(ctx context.Context, username string) (*enrich.Profile, error)
	}

	// Researcher — сводка по одному профилю из LinkedIn-сервиса.
	Researcher interface {
		Research(ctx context.Context, username string, tags []string) (*linkedin.Summary, error)
	}

	// MessageGenerator — генерация одного сообщения.
	MessageGenerator interface {
		Generate(ctx context.Context, req outreach.Request) (string, error)
	}

	// ReportWriter — запись CSV-отчёта с регистрацией артефакта.
	ReportWriter interface {
		WriteCSV(filename string, columns []string, rows []map[string]string, meta map[string]any) (*domain.ArtifactRecord, error)
	}
)

// Config — зависимости стандартного набора исполнителей.
type Config struct {
	Profiles ProfileSource
	Enricher Enricher
	Research Researcher
	Messages MessageGenerator
	Reports  ReportWriter
}

// Registry — исполнители по видам шагов.
type Registry struct {
	executors map[domain.StepKind]Executor
}

// NewRegistry создаёт реестр со стандартным набором исполнителей.
func NewRegistry(cfg Config) *Registry {
	r := NewEmptyRegistry()
	r.Register(&QueryDataExecutor{Source: cfg.Profiles})
	r.Register(&EnrichExecutor{Client: cfg.Enricher})
	r.Register(&LinkedInExecutor{Client: cfg.Research})
	r.Register(&OutreachExecutor{Generator: cfg.Messages})
	r.Register(&ReportExecutor{Writer: cfg.Reports})
	return r
}

// NewEmptyRegistry создаёт реестр без исполнителей.
func NewEmptyRegistry() *Registry {
	return &Registry{executors: make(map[domain.StepKind]Executor)}
}

// Register добавляет исполнителя, заменяя прежнего для того же вида.
func (r *Registry) Register(e Executor) {
	r.executors[e.Kind()] = e
}

// ForKind возвращает исполнителя для вида шага.
func (r *Registry) ForKind(kind domain.StepKind) (Executor, error) {
	e, ok := r.executors[kind]
	if !ok {
		return nil, fmt.Errorf("step kind %q: %w", kind, ErrNoExecutor)
	}
	return e, nil
}

// Kinds возвращает число зарегистрированных исполнителей.
func (r *Registry) Kinds() int {
	return len(r.executors)
}
