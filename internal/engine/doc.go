// Package engine разбирает и валидирует планы.
//
// Включает:
//   - parser.go — разбор плана из JSON и структурная валидация
//     (форма params выбирается по kind)
//   - refs.go   — семантическая валидация ссылок между шагами,
//     извлечение зависимостей и опциональный поиск циклов
//
// Движок не переупорядочивает шаги: авторитетный порядок выполнения —
// порядок массива steps, граф зависимостей вспомогательный.
package engine
