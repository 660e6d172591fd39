package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

const publishTimeout = 3 * time.Second

// Publisher sends booking confirmations to a durable queue. It dials per
// message, which keeps it usable when the broker restarts.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}

	return &Publisher{
		url:   url,
		queue: queue,
	}
}

// BookingConfirmed publishes the grant in the background. Failures are
// logged and dropped; the booking is already committed.
func (p *Publisher) BookingConfirmed(ctx context.Context, grant domain.TicketGrant, event domain.Event) {
	ctx = context.WithoutCancel(ctx)
	msg := NewBookingConfirmed(grant, event)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := p.Publish(ctx, msg); err != nil {
			zap.L().Warn("failed to publish booking confirmation",
				zap.Uint("ticket_id", msg.TicketID),
				zap.String("queue", p.queue),
				zap.Error(err),
			)
		}
	}()
}

func (p *Publisher) Publish(ctx context.Context, msg BookingConfirmed) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(publishTimeout)})
	if err != nil {
		return fmt.Errorf("amqp.Dial -> %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("conn.Channel -> %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err = declareQueue(ch, p.queue); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("ch.PublishWithContext -> %w", err)
	}

	return nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("ch.QueueDeclare -> %w", err)
	}

	return q, nil
}
