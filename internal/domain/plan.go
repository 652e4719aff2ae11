package domain

import "time"

// Plan — валидированный план: цель и упорядоченная последовательность
// шагов. Порядок массива Steps — авторитетный порядок выполнения,
// отдельного планировщика нет.
type Plan struct {
	// PlanID — идентификатор плана; коллизии разрешаются при сохранении.
	PlanID string `json:"planId"`

	// Objective — цель плана в свободной форме.
	Objective string `json:"objective"`

	// Steps — шаги в порядке выполнения.
	Steps []Step `json:"steps"`

	// Notes — необязательные заметки автора плана.
	Notes string `json:"notes,omitempty"`

	// CreatedAt — время создания; проставляется при инициализации,
	// если источник плана его не указал.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Step возвращает шаг по идентификатору.
func (p *Plan) Step(stepID string) (*Step, bool) {
	for i := range p.Steps {
		if p.Steps[i].ID == stepID {
			return &p.Steps[i], true
		}
	}
	return nil, false
}

// Record — одна именованная запись результата шага
// (строка выборки, обогащённый профиль, сообщение и т.п.).
type Record = map[string]any

// StepOutput — полный результат шага. Единый контракт: каждый
// исполнитель возвращает список записей, извлечение данных
// зависимыми шагами идёт одним путём — через Records.
type StepOutput struct {
	// Records — записи результата в порядке получения.
	Records []Record `json:"records"`

	// Meta — служебные сведения исполнителя (rowCount, truncated, ...).
	Meta map[string]any `json:"meta,omitempty"`
}

// Snippet — ограниченный предпросмотр результата шага для клиента.
// Никогда не содержит полный payload.
type Snippet struct {
	Records      []Record `json:"records"`
	TotalRecords int      `json:"totalRecords"`
	Truncated    bool     `json:"truncated"`
}

// StoredPlan — план в хранилище: сам план, время сохранения и
// накопленные полные результаты шагов. StepOutputs используются
// только для передачи данных между шагами и не отдаются клиентам.
type StoredPlan struct {
	Plan

	// StoredAt — время сохранения в хранилище.
	StoredAt time.Time `json:"storedAt"`

	// StepOutputs — step id → полный результат шага.
	StepOutputs map[string]*StepOutput `json:"stepOutputs"`
}

// Clone делает структурную копию: срез шагов и карта результатов
// копируются, чтобы изменения черновика не были видны держателям
// предыдущего снимка.
func (sp *StoredPlan) Clone() *StoredPlan {
	c := &StoredPlan{
		Plan:     sp.Plan,
		StoredAt: sp.StoredAt,
	}
	c.Steps = make([]Step, len(sp.Steps))
	copy(c.Steps, sp.Steps)
	c.StepOutputs = make(map[string]*StepOutput, len(sp.StepOutputs))
	for k, v := range sp.StepOutputs {
		c.StepOutputs[k] = v
	}
	return c
}

// View проецирует план в форму для внешнего клиента:
// без StepOutputs, только статусы, сводки и сниппеты шагов.
func (sp *StoredPlan) View() *PlanView {
	steps := make([]Step, len(sp.Steps))
	copy(steps, sp.Steps)
	return &PlanView{
		PlanID:    sp.PlanID,
		Objective: sp.Objective,
		Steps:     steps,
		Notes:     sp.Notes,
		CreatedAt: sp.CreatedAt,
		StoredAt:  sp.StoredAt,
	}
}

// PlanView — представление плана, безопасное для выдачи наружу.
// Полные результаты шагов сюда не попадают.
type PlanView struct {
	PlanID    string     `json:"planId"`
	Objective string     `json:"objective"`
	Steps     []Step     `json:"steps"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	StoredAt  time.Time  `json:"storedAt"`
}
