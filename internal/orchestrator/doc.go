// Package orchestrator выполняет сохранённые планы.
//
// Движок выполняет шаги строго последовательно, в порядке массива
// steps плана. Перед шагом публикуется step_started, после —
// step_result (плюс artifact_ready на каждый созданный артефакт).
// Ошибка шага публикует plan_error и останавливает прогон; уже
// достигнутые результаты остаются в хранилище. Полные результаты
// шагов клиентам не отдаются — наружу уходят сводки и сниппеты.
//
// Orchestrator — это "мозг" системы, который координирует выполнение.
package orchestrator
