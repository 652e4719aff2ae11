// Package mq зеркалирует события выполнения планов в RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление обменника, очереди и привязки
//   - publisher.go  — публикация событий плана
//
// Зеркало — write-only: движок публикует события с ключами
// plan.event.<type> в обменник prospector.events, а вычитывают их
// только внешние потребители (аудит, аналитика). Отказ RabbitMQ не
// влияет на выполнение плана и на SSE-стрим.
package mq
