// Package stream доставляет события выполнения плана клиентам.
//
// SSEStream пишет события в HTTP-ответ в формате Server-Sent Events.
// Relay — ограниченная очередь между движком выполнения и приёмником:
// буферизация и обратное давление здесь явные, а мёртвый клиент не
// останавливает выполнение плана.
package stream
