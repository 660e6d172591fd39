package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, msg BookingConfirmed) error

type Consumer struct {
	url     string
	queue   string
	handler Handler
}

func NewConsumer(url, queue string, handler Handler) *Consumer {
	if queue == "" {
		queue = DefaultQueueName
	}

	return &Consumer{
		url:     url,
		queue:   queue,
		handler: handler,
	}
}

// Run consumes until ctx is done, reconnecting with exponential backoff
// whenever the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			zap.L().Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if err = sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		zap.L().Warn("consume loop ended, reconnecting", zap.Error(err))
		if err = sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("conn.Channel -> %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err = ch.Qos(50, 0, false); err != nil {
		zap.L().Warn("failed to set qos", zap.Error(err))
	}

	if _, err = declareQueue(ch, c.queue); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("ch.ConsumeWithContext -> %w", err)
	}

	for d := range deliveries {
		if err := c.handle(ctx, d.Body); err != nil {
			zap.L().Error("failed to handle message", zap.String("message_id", d.MessageId), zap.Error(err))
			// Not requeued, a poison message would loop forever.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}

	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var msg BookingConfirmed
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return c.handler(ctx, msg)
}

// LogHandler writes each confirmation to the global zap logger.
func LogHandler(_ context.Context, msg BookingConfirmed) error {
	zap.L().Info("booking confirmed",
		zap.Uint("ticket_id", msg.TicketID),
		zap.Uint("event_id", msg.EventID),
		zap.String("event_title", msg.EventTitle),
		zap.Uint("user_id", msg.UserID),
		zap.Int("quantity", msg.Quantity),
		zap.String("total_amount", msg.TotalAmount.String()),
		zap.Time("booked_at", msg.BookedAt),
	)

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
