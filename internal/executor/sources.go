package executor

import (
	"fmt"
	"strings"

	"github.com/shaiso/Prospector/internal/domain"
)

// usernameFields — поля записи, в которых ищется username при
// автоопределении, в порядке предпочтения.
var usernameFields = []string{"current_username", "username", "handle"}

// sourceRecords возвращает записи результата шага-источника.
// Отсутствие записанного результата — жёсткая ошибка шага: такое
// бывает только при ссылке вперёд по порядку выполнения.
func sourceRecords(state State, stepID string) ([]domain.Record, error) {
	out, ok := state.Output(stepID)
	if !ok || out == nil {
		return nil, fmt.Errorf("step %q: %w", stepID, ErrNoSourceOutput)
	}
	return out.Records, nil
}

// ExtractUsernames извлекает username из записей: плоский список в
// порядке появления, без дубликатов, не длиннее max (max <= 0 — без
// ограничения). Записи без поля пропускаются молча.
func ExtractUsernames(records []domain.Record, field string, max int) []string {
	var out []string
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		name := usernameFrom(rec, field)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// usernameFrom достаёт username из записи. Пустой field включает
// автоопределение по известным именам полей.
func usernameFrom(rec domain.Record, field string) string {
	if field != "" {
		return stringField(rec, field)
	}
	for _, f := range usernameFields {
		if v := stringField(rec, f); v != "" {
			return v
		}
	}
	return ""
}

// stringField возвращает поле записи строкой; отсутствующее или
// nil-поле — пустая строка.
func stringField(rec domain.Record, field string) string {
	v, ok := rec[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
