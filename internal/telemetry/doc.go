// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// API-сервис и CLI используют единый формат логирования;
// метрики экспортируются на /metrics endpoint API-сервиса.
package telemetry
