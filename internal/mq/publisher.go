package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Prospector/internal/domain"
)

// Publisher зеркалирует события выполнения планов в RabbitMQ.
// Тело сообщения — тот же JSON события, что уходит SSE-клиентам,
// поэтому потребители очереди и подписчики стрима видят одно и то же.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PublishPlanEvent публикует событие жизненного цикла плана с ключом
// маршрутизации plan.event.<type>.
func (p *Publisher) PublishPlanEvent(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	routingKey := PlanEventRoutingKey(string(event.Type))

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents), // exchange
			string(routingKey),     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    uuid.New().String(),
				Timestamp:    event.At,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published plan event",
			"routing_key", routingKey,
			"type", event.Type,
		)

		return nil
	})
}
