package profiledb

import "errors"

// Ошибки выборки профилей.
var (
	// ErrUnknownIntent — запрошен intent, которого нет в каталоге.
	ErrUnknownIntent = errors.New("unknown query intent")

	// ErrMissingFilter — intent требует фильтр, которого нет в params.
	ErrMissingFilter = errors.New("missing required filter")
)
