// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (хранилище, движок, planner, publisher)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - plan_handler.go     — обработчики для /plans
//   - execute_handler.go  — SSE-стрим выполнения плана
//   - artifact_handler.go — обработчики для /artifacts
//
// API предоставляет REST endpoints для планов и артефактов; выполнение
// плана отдаётся потоком Server-Sent Events.
package api
