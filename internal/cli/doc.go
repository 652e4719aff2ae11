// Package cli реализует инструмент командной строки Prospector.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Prospector API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления планами и артефактами.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Prospector API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (dataResponse, listResponse, errorResponse)
// и обработку ошибок. Для выполнения плана читает SSE-поток:
// ExecutePlan блокируется до финального кадра done и вызывает
// колбэк на каждое событие.
//
//	client := cli.NewClient("http://localhost:8080")
//	plans, err := client.ListPlans()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: prospector plan list --json | jq .
// События выполнения в --json режиме печатаются построчно, в той же
// форме, что и кадры сервера.
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - plan: list, submit, validate, generate, show, execute
//   - artifact: list, show, download
//
// Каждая группа создаётся через фабричную функцию (NewPlanCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
