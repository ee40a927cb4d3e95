// Package rabbit publishes activity events and consumes them in the standing worker.
package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"
	"github.com/Temutjin2k/govv-tracker/pkg/rabbit"
)

const (
	ActivityExchange = "activity_topic"

	QueueStandingRefresh = "standing_refresh"
	BindingActivityAll   = "activity.#"

	serviceName = "govv-tracker"
)

var errDecode = errors.New("decode failed")

// RoutingKey is activity.created.{rider_id}.
func RoutingKey(msg models.ActivityCreatedMessage) string {
	rider := msg.RiderID
	if rider == "" {
		rider = types.AnonymousRider
	}
	return fmt.Sprintf("%s.%s", types.EventActivityCreated, rider)
}

type ActivityProducer struct {
	client   *rabbit.RabbitMQ
	exchange string
	l        logger.Logger
}

func NewActivityProducer(ctx context.Context, client *rabbit.RabbitMQ, l logger.Logger) (*ActivityProducer, error) {
	p := &ActivityProducer{client: client, exchange: ActivityExchange, l: l}
	if err := p.declare(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ActivityProducer) declare(ctx context.Context) error {
	const op = "ActivityProducer.declare"

	ch, err := p.client.Chan(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: declare exchange: %w", op, err)
	}
	return nil
}

// PublishActivityCreated sends the event to activity_topic with key activity.created.{rider}.
func (p *ActivityProducer) PublishActivityCreated(ctx context.Context, msg models.ActivityCreatedMessage) error {
	const op = "ActivityProducer.PublishActivityCreated"
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_activity_created")

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: marshal: %w", op, err))
	}

	key := RoutingKey(msg)

	err = retry(3, 500*time.Millisecond, func() error {
		ch, err := p.client.Chan(ctx)
		if err != nil {
			return err
		}
		return ch.PublishWithContext(
			ctx,
			p.exchange,
			key,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:   "application/json",
				DeliveryMode:  amqp.Persistent,
				CorrelationId: msg.CorrelationID,
				MessageId:     msg.ActivityID,
				Timestamp:     msg.Timestamp,
				Body:          body,
			},
		)
	})
	metrics.RecordRabbitMQPublish(serviceName, key, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: publish: %w", op, err))
	}

	p.l.Debug(ctx, "activity event published", "routing_key", key)
	return nil
}
