package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

const (
	// ExchangeEvents — topic-обменник событий выполнения планов.
	ExchangeEvents Exchange = "prospector.events"

	// QueuePlanEvents — очередь событий для внешних потребителей
	// (аудит, аналитика). Движок её не вычитывает.
	QueuePlanEvents Queue = "prospector.plan-events"

	// BindingPlanEvents — шаблон ключей plan.event.<type>.
	BindingPlanEvents RoutingKey = "plan.event.*"
)

// PlanEventRoutingKey возвращает ключ маршрутизации для типа события,
// например plan.event.step_result.
func PlanEventRoutingKey(eventType string) RoutingKey {
	return RoutingKey("plan.event." + eventType)
}

// SetupTopology объявляет обменник событий, очередь и привязку.
// Объявления идемпотентны: повторный запуск сервиса безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueuePlanEvents), // name
			true,                    // durable
			false,                   // delete when unused
			false,                   // exclusive
			false,                   // no-wait
			nil,                     // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueuePlanEvents, err)
		}

		err = ch.QueueBind(
			string(QueuePlanEvents),   // queue name
			string(BindingPlanEvents), // routing key
			string(ExchangeEvents),    // exchange
			false,                     // no-wait
			nil,                       // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueuePlanEvents, ExchangeEvents, err)
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Prospector RabbitMQ Topology:

    prospector.events (topic)
    └── prospector.plan-events [routing: plan.event.*]
            Consumers: external (audit, analytics)
  `
}
