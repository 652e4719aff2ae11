package domain

import "time"

// EventType — тип события жизненного цикла выполнения плана.
type EventType string

// Словарь событий. Порядок эмиссии строго повторяет порядок
// переходов состояния; транспорт не переупорядочивает события.
const (
	EventPlanStarted   EventType = "plan_started"
	EventStepStarted   EventType = "step_started"
	EventStepResult    EventType = "step_result"
	EventArtifactReady EventType = "artifact_ready"
	EventPlanCompleted EventType = "plan_completed"
	EventPlanError     EventType = "plan_error"
)

// Event — событие оркестратора. Payload — одна из *Payload структур
// этого файла; каждая несёт как минимум planId.
type Event struct {
	Type    EventType `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// NewEvent создаёт событие с текущим временем.
func NewEvent(t EventType, payload any) Event {
	return Event{Type: t, At: time.Now().UTC(), Payload: payload}
}

// PlanStartedPayload — начало выполнения плана.
type PlanStartedPayload struct {
	PlanID     string `json:"planId"`
	Objective  string `json:"objective"`
	TotalSteps int    `json:"totalSteps"`
}

// StepStartedPayload — шаг переведён в RUNNING.
type StepStartedPayload struct {
	PlanID string   `json:"planId"`
	StepID string   `json:"stepId"`
	Kind   StepKind `json:"kind"`
	Title  string   `json:"title,omitempty"`

	// Index — позиция шага в плане, с нуля.
	Index int `json:"index"`
}

// StepResultPayload — шаг достиг терминального статуса.
type StepResultPayload struct {
	PlanID     string     `json:"planId"`
	StepID     string     `json:"stepId"`
	Kind       StepKind   `json:"kind"`
	Status     StepStatus `json:"status"`
	Summary    string     `json:"summary,omitempty"`
	Snippet    *Snippet   `json:"snippet,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"durationMs"`
}

// ArtifactReadyPayload — шаг создал артефакт.
type ArtifactReadyPayload struct {
	PlanID   string         `json:"planId"`
	StepID   string         `json:"stepId"`
	Artifact ArtifactRecord `json:"artifact"`
}

// PlanCompletedPayload — выполнение плана завершилось.
//
// FinalStatus всегда "SUCCESS": поле фиксирует факт завершения
// прогона, а не успех всех шагов. Остановка по ошибке различима
// по отдельному событию plan_error и по статусам шагов.
type PlanCompletedPayload struct {
	PlanID      string `json:"planId"`
	FinalStatus string `json:"finalStatus"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	DurationMs  int64  `json:"durationMs"`
}

// PlanErrorPayload — шаг остановил выполнение плана.
type PlanErrorPayload struct {
	PlanID  string `json:"planId"`
	StepID  string `json:"stepId"`
	Message string `json:"message"`
}
