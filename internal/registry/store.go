package registry

import (
	"context"

	"github.com/shaiso/Prospector/internal/domain"
)

// StatusExtra — поля, записываемые вместе со сменой статуса шага.
// Нулевые поля не трогают уже записанные значения.
type StatusExtra struct {
	// Error — сообщение об ошибке; заполняется для ERROR.
	Error string

	// OutputSummary — однострочная сводка результата для клиента.
	OutputSummary string

	// ArtifactIDs — идентификаторы созданных шагом артефактов.
	ArtifactIDs []string

	// Snippet — ограниченный предпросмотр результата.
	Snippet *domain.Snippet
}

// Store — хранилище планов. Реализация обязана выдерживать
// конкурентный доступ; мутация идёт только через Update и
// производные от него методы.
type Store interface {
	// Save валидирует план, проставляет значения по умолчанию
	// (createdAt, статус PENDING каждому шагу) и сохраняет его.
	// Занятый planId разрешается суффиксом: -2, -3 и так далее.
	// Возвращает сохранённую форму; её id может отличаться от
	// исходного. План вызывающей стороны не меняется.
	Save(ctx context.Context, plan *domain.Plan) (*domain.StoredPlan, error)

	// Get возвращает текущий снимок плана.
	Get(ctx context.Context, planID string) (*domain.StoredPlan, error)

	// List возвращает снимки всех планов, новые первыми.
	List(ctx context.Context) ([]*domain.StoredPlan, error)

	// Update применяет mutate к копии плана и атомарно подменяет
	// снимок. Ошибка mutate отменяет обновление целиком.
	Update(ctx context.Context, planID string, mutate func(*domain.StoredPlan) error) (*domain.StoredPlan, error)

	// RecordStepOutput записывает полный результат шага. Результат
	// доступен зависимым шагам и не отдаётся клиентам.
	RecordStepOutput(ctx context.Context, planID, stepID string, output *domain.StepOutput) error

	// SetStepStatus переводит шаг в новый статус, отклоняя
	// недопустимые переходы. RUNNING фиксирует startedAt,
	// терминальный статус — endedAt. extra может быть nil.
	SetStepStatus(ctx context.Context, planID, stepID string, status domain.StepStatus, extra *StatusExtra) error
}
