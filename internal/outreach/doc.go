// Package outreach генерирует персональные сообщения для профилей.
//
// Текст пишет LLM; без сконфигурированной модели генерация идёт по
// шаблону из параметров шага. Оба пути возвращают одно сообщение на
// получателя.
package outreach
