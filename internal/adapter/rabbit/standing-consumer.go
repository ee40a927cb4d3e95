package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"
	"github.com/Temutjin2k/govv-tracker/pkg/rabbit"
)

type ActivityHandler func(ctx context.Context, msg models.ActivityCreatedMessage) error

type StandingConsumer struct {
	client   *rabbit.RabbitMQ
	queue    string
	prefetch int
	l        logger.Logger
}

func NewStandingConsumer(client *rabbit.RabbitMQ, prefetch int, l logger.Logger) *StandingConsumer {
	if prefetch <= 0 {
		prefetch = 1
	}
	return &StandingConsumer{client: client, queue: QueueStandingRefresh, prefetch: prefetch, l: l}
}

func (c *StandingConsumer) setup(ctx context.Context) (<-chan amqp.Delivery, error) {
	const op = "StandingConsumer.setup"

	ch, err := c.client.Chan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := ch.ExchangeDeclare(ActivityExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: declare exchange: %w", op, err)
	}

	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: declare queue: %w", op, err)
	}

	if err := ch.QueueBind(q.Name, BindingActivityAll, ActivityExchange, false, nil); err != nil {
		return nil, fmt.Errorf("%s: bind queue: %w", op, err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("%s: qos: %w", op, err)
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: consume: %w", op, err)
	}
	return msgs, nil
}

// Consume feeds activity events to fn until ctx is done, re-subscribing after connection loss.
// Deliveries are handled one at a time so standing refreshes do not race.
func (c *StandingConsumer) Consume(ctx context.Context, fn ActivityHandler) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_consume_activity_created")

	for {
		if ctx.Err() != nil {
			c.l.Debug(ctx, "standing consumer stopped by context")
			return nil
		}

		msgs, err := c.setup(ctx)
		if err != nil {
			c.l.Error(ctx, "consumer setup failed", err)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		c.l.Info(ctx, "start consuming activity events", "queue", c.queue)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				c.l.Info(ctx, "standing consumer shutting down")
				return nil

			case d, ok := <-msgs:
				if !ok {
					c.l.Warn(ctx, "message channel closed, reconnecting...")
					break consumeLoop
				}
				c.handle(ctx, fn, d)
			}
		}
	}
}

func (c *StandingConsumer) handle(ctx context.Context, fn ActivityHandler, d amqp.Delivery) {
	var msg models.ActivityCreatedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.l.Error(ctx, "failed to decode activity event", fmt.Errorf("%w: %v", errDecode, err))
		metrics.RecordRabbitMQConsume(serviceName, c.queue, errDecode)
		_ = d.Nack(false, false)
		return
	}

	hctx := wrap.WithLogCtx(ctx, wrap.LogCtx{
		RequestID:  d.CorrelationId,
		RiderID:    msg.RiderID,
		ActivityID: msg.ActivityID,
	})

	err := fn(hctx, msg)
	metrics.RecordRabbitMQConsume(serviceName, c.queue, err)
	if err != nil {
		c.l.Error(wrap.ErrorCtx(hctx, err), "failed to handle activity event", err)
		// one redelivery, then drop
		_ = d.Nack(false, isRecoverableError(err) && !d.Redelivered)
		return
	}

	if err := d.Ack(false); err != nil {
		c.l.Warn(hctx, "ack failed", "error", err.Error())
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
