package outreach

import "errors"

// Ошибки генерации сообщений.
var (
	// ErrNoTemplate — модель не настроена, а шаблон сообщения пуст.
	ErrNoTemplate = errors.New("no model configured and no message template provided")

	// ErrEmptyCompletion — модель вернула пустой ответ.
	ErrEmptyCompletion = errors.New("model returned empty completion")

	// ErrTemplateParse — шаблон сообщения не разбирается.
	ErrTemplateParse = errors.New("message template parse error")

	// ErrTemplateRender — шаблон сообщения не рендерится.
	ErrTemplateRender = errors.New("message template render error")
)
