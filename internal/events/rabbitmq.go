// README: RabbitMQ fanout publisher and consumer for gate events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeName = "opsgate.events"
	QueueName    = "gate_checks"
)

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := declare(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *Publisher) Publish(ctx context.Context, ev GateEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal gate event: %w", err)
	}
	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Kind),
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// Consumer delivers gate events from the shared queue.
type Consumer struct {
	ch  *amqp.Channel
	log logrus.FieldLogger
}

func NewConsumer(conn *amqp.Connection, log logrus.FieldLogger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := declare(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &Consumer{ch: ch, log: log}, nil
}

// Run calls handle for each event until ctx is done or the channel closes.
// Undecodable messages are dropped; a handler error requeues the message.
func (c *Consumer) Run(ctx context.Context, handle func(context.Context, GateEvent) error) error {
	msgs, err := c.ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			ev, err := Decode(msg.Body)
			if err != nil {
				c.log.WithError(err).Warn("dropping gate event")
				_ = msg.Nack(false, false)
				continue
			}
			if err := handle(ctx, ev); err != nil {
				c.log.WithError(err).WithField("checklist_id", ev.ChecklistID).Error("gate event handler failed")
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	return c.ch.Close()
}
