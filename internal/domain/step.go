package domain

import "time"

// StepKind — вид шага плана. Закрытый набор: каждому виду
// соответствует ровно один исполнитель и одна форма params.
type StepKind string

const (
	// StepKindQueryData — выборка профилей из базы данных.
	StepKindQueryData StepKind = "QUERY_DATA"

	// StepKindEnrichProfile — обогащение профилей через внешний API.
	StepKindEnrichProfile StepKind = "ENRICH_PROFILE"

	// StepKindLinkedInResearch — сводка по профилю из LinkedIn-сервиса.
	StepKindLinkedInResearch StepKind = "LINKEDIN_RESEARCH"

	// StepKindGenerateOutreach — генерация персональных сообщений.
	StepKindGenerateOutreach StepKind = "GENERATE_OUTREACH"

	// StepKindReport — сводный CSV-отчёт по результатам других шагов.
	StepKindReport StepKind = "REPORT"
)

// KnownStepKinds возвращает все поддерживаемые виды шагов.
func KnownStepKinds() []StepKind {
	return []StepKind{
		StepKindQueryData,
		StepKindEnrichProfile,
		StepKindLinkedInResearch,
		StepKindGenerateOutreach,
		StepKindReport,
	}
}

// Valid возвращает true, если вид шага известен движку.
func (k StepKind) Valid() bool {
	switch k {
	case StepKindQueryData, StepKindEnrichProfile, StepKindLinkedInResearch,
		StepKindGenerateOutreach, StepKindReport:
		return true
	default:
		return false
	}
}

// StepParams — параметры шага: закрытое объединение по видам.
// Конкретный вариант выбирается по полю kind при разборе плана;
// реализации ограничены этим пакетом.
type StepParams interface {
	ParamsKind() StepKind
	stepParams()
}

// QueryDataParams — параметры шага QUERY_DATA.
type QueryDataParams struct {
	// Intent — именованный запрос (recent_profiles, profiles_by_tag, ...).
	Intent string `json:"intent"`

	// Limit — максимум строк; 0 означает лимит по умолчанию.
	Limit int `json:"limit,omitempty"`

	// Filters — дополнительные условия выборки (tag, campaign, ...).
	Filters map[string]any `json:"filters,omitempty"`
}

func (QueryDataParams) ParamsKind() StepKind { return StepKindQueryData }
func (QueryDataParams) stepParams()          {}

// EnrichProfileParams — параметры шага ENRICH_PROFILE.
type EnrichProfileParams struct {
	// SourceStepID — шаг, из результата которого берутся username.
	SourceStepID string `json:"sourceStepId"`

	// UsernameField — поле записи с username; пустое — автоопределение.
	UsernameField string `json:"usernameField,omitempty"`

	// MaxProfiles — максимум профилей на обогащение; 0 — по умолчанию.
	MaxProfiles int `json:"maxProfiles,omitempty"`
}

func (EnrichProfileParams) ParamsKind() StepKind { return StepKindEnrichProfile }
func (EnrichProfileParams) stepParams()          {}

// LinkedInResearchParams — параметры шага LINKEDIN_RESEARCH.
type LinkedInResearchParams struct {
	SourceStepID  string `json:"sourceStepId"`
	UsernameField string `json:"usernameField,omitempty"`
	MaxProfiles   int    `json:"maxProfiles,omitempty"`

	// Tags — темы, которые сервис должен учесть в сводке.
	Tags []string `json:"tags,omitempty"`
}

func (LinkedInResearchParams) ParamsKind() StepKind { return StepKindLinkedInResearch }
func (LinkedInResearchParams) stepParams()          {}

// GenerateOutreachParams — параметры шага GENERATE_OUTREACH.
type GenerateOutreachParams struct {
	SourceStepID string `json:"sourceStepId"`

	// MessageTemplate — шаблон сообщения ({{.username}}, {{.full_name}}, ...).
	MessageTemplate string `json:"messageTemplate,omitempty"`

	// Tone — тон сообщения (friendly, formal, ...).
	Tone string `json:"tone,omitempty"`

	CompanyName string `json:"companyName,omitempty"`
	SenderName  string `json:"senderName,omitempty"`

	// CustomPrompt — дополнительная инструкция для модели.
	CustomPrompt string `json:"customPrompt,omitempty"`

	// MaxMessages — максимум сообщений; 0 — по умолчанию.
	MaxMessages int `json:"maxMessages,omitempty"`
}

func (GenerateOutreachParams) ParamsKind() StepKind { return StepKindGenerateOutreach }
func (GenerateOutreachParams) stepParams()          {}

// ReportParams — параметры шага REPORT.
type ReportParams struct {
	// SourceStepIDs — шаги, записи которых попадают в отчёт.
	SourceStepIDs []string `json:"sourceStepIds"`

	// Columns — проекция колонок отчёта.
	Columns []string `json:"columns"`

	Filename string `json:"filename,omitempty"`

	// Format — формат отчёта; поддерживается только "csv".
	Format string `json:"format,omitempty"`
}

func (ReportParams) ParamsKind() StepKind { return StepKindReport }
func (ReportParams) stepParams()          {}

// Step — один шаг плана.
//
// Runtime-поля (Status и далее) заполняются исключительно движком;
// план от модели разбирается через wire-структуру без этих полей,
// поэтому источник плана не может их подставить.
type Step struct {
	// ID — уникальный идентификатор шага в рамках плана.
	ID string `json:"id"`

	// Kind — вид шага, определяет форму Params и исполнителя.
	Kind StepKind `json:"kind"`

	// Title — короткое человекочитаемое название шага.
	Title string `json:"title"`

	// Description — необязательное развёрнутое описание.
	Description string `json:"description,omitempty"`

	// Params — параметры конкретного вида шага.
	Params StepParams `json:"params"`

	// --- Runtime-поля, пишет только движок ---

	Status    StepStatus `json:"status"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`

	// Error — сообщение об ошибке при статусе ERROR.
	Error string `json:"error,omitempty"`

	// OutputSummary — однострочная сводка результата для клиента.
	OutputSummary string `json:"outputSummary,omitempty"`

	// ProducedArtifactIDs — идентификаторы созданных артефактов.
	ProducedArtifactIDs []string `json:"producedArtifactIds,omitempty"`

	// ResultSnippet — ограниченный предпросмотр результата.
	ResultSnippet *Snippet `json:"resultSnippet,omitempty"`
}

// MarkRunning переводит шаг в RUNNING и фиксирует время старта.
func (s *Step) MarkRunning() {
	now := time.Now().UTC()
	s.Status = StepStatusRunning
	s.StartedAt = &now
}

// MarkTerminal переводит шаг в терминальный статус и фиксирует
// время завершения. Нетерминальные статусы игнорируются.
func (s *Step) MarkTerminal(status StepStatus) {
	if !status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	s.Status = status
	s.EndedAt = &now
}

// SourceStepIDs возвращает идентификаторы шагов, на результаты
// которых ссылаются параметры. Пустой срез — шаг ни от кого не зависит.
func (s Step) SourceStepIDs() []string {
	switch p := s.Params.(type) {
	case EnrichProfileParams:
		return []string{p.SourceStepID}
	case LinkedInResearchParams:
		return []string{p.SourceStepID}
	case GenerateOutreachParams:
		return []string{p.SourceStepID}
	case ReportParams:
		ids := make([]string, len(p.SourceStepIDs))
		copy(ids, p.SourceStepIDs)
		return ids
	default:
		return nil
	}
}
