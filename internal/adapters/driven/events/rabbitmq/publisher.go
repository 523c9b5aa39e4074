package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
)

// Ensure Publisher implements the interface.
var _ driven.JobEventPublisher = (*Publisher)(nil)

// Publisher sends job events to a durable queue.
type Publisher struct {
	conn      *amqp.Connection
	queueName string
}

// Dial connects to the broker at url and declares the queue.
func Dial(ctx context.Context, url, queueName string) (*Publisher, error) {
	if queueName == "" {
		return nil, domain.Invalid("queue name is required")
	}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	p := NewPublisher(conn, queueName)
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declare(ch, queueName); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

// NewPublisher wraps an open connection. The publisher owns conn.
func NewPublisher(conn *amqp.Connection, queueName string) *Publisher {
	return &Publisher{conn: conn, queueName: queueName}
}

// Publish sends one event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, event domain.JobEvent) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declare(ch, p.queueName); err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         string(event.Type),
			Timestamp:    event.At,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish job event failed: %w", err)
	}
	return nil
}

// Close closes the connection.
func (p *Publisher) Close() error {
	if p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// Encode renders an event as the message body. The error text is copied
// into the serialized field when only Err is set.
func Encode(event domain.JobEvent) ([]byte, error) {
	if event.ErrMessage == "" && event.Err != nil {
		event.ErrMessage = event.Err.Error()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal job event failed: %w", err)
	}
	return body, nil
}

func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return nil
}
