package domain

import "time"

// ArtifactType — тип артефакта.
type ArtifactType string

const (
	// ArtifactTypeCSV — CSV-отчёт. Единственный тип на сегодня.
	ArtifactTypeCSV ArtifactType = "CSV"
)

// ArtifactRecord — учётная запись созданного файла. Жизненный цикл
// артефакта независим от плана и шага: артефакт переживает шаг,
// который его создал, и извлекается только по id.
type ArtifactRecord struct {
	// ID — непрозрачный идентификатор артефакта.
	ID string `json:"id"`

	// Type — тип артефакта.
	Type ArtifactType `json:"type"`

	// Filename — имя файла для выдачи клиенту.
	Filename string `json:"filename"`

	// Path — путь к файлу в хранилище. Наружу не отдаётся:
	// клиент получает содержимое только через download.
	Path string `json:"-"`

	// Mime — MIME-тип содержимого.
	Mime string `json:"mime"`

	// CreatedAt — время создания файла.
	CreatedAt time.Time `json:"createdAt"`

	// Bytes — размер файла в байтах.
	Bytes int64 `json:"bytes"`

	// Meta — произвольные сведения (planId, stepId, rowCount, ...).
	Meta map[string]any `json:"meta,omitempty"`
}
