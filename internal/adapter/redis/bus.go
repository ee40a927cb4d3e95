package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

const (
	channelPrefix = "govv:session:"
	channelSuffix = ":live"
)

// Sink receives live payloads for a session, usually the websocket hub.
type Sink interface {
	Broadcast(topic string, msg any) int
}

// Bus fans session events out to live viewers. With a redis client the events go
// through pub/sub so viewers connected to any instance receive them; without one
// they are delivered to the local sink directly.
type Bus struct {
	redis *redis.Client
	sink  Sink
	log   logger.Logger
	ready chan struct{}
}

func NewBus(client *redis.Client, sink Sink, log logger.Logger) *Bus {
	return &Bus{
		redis: client,
		sink:  sink,
		log:   log,
		ready: make(chan struct{}),
	}
}

func (b *Bus) OnSample(sessionID string, p models.Position, snap models.SessionSnapshot) {
	b.publish(sessionID, models.LiveSampleMessage{
		Type:       "sample",
		SessionID:  sessionID,
		Position:   p,
		Samples:    snap.Samples,
		DistanceKm: snap.DistanceKm,
		AvgKmh:     snap.AvgKmh,
	})
}

func (b *Bus) OnStateChange(sessionID string, state types.SessionState) {
	b.publish(sessionID, models.LiveStateMessage{
		Type:      "state",
		SessionID: sessionID,
		State:     state.String(),
	})
}

func (b *Bus) publish(sessionID string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		b.log.Error(context.Background(), "failed to encode live message", err)
		return
	}

	if b.redis == nil {
		b.sink.Broadcast(sessionID, json.RawMessage(payload))
		return
	}

	ctx := wrap.WithSessionID(context.Background(), sessionID)
	if err := b.redis.Publish(ctx, Channel(sessionID), payload).Err(); err != nil {
		b.log.Warn(wrap.WithAction(ctx, types.ActionCacheFailed), "redis publish failed", "error", err.Error())
	}
}

// Run forwards subscribed messages to the sink until ctx is done.
// Without a redis client it only waits for ctx.
func (b *Bus) Run(ctx context.Context) error {
	if b.redis == nil {
		close(b.ready)
		<-ctx.Done()
		return nil
	}

	ps := b.redis.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	close(b.ready)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			sessionID := SessionFromChannel(msg.Channel)
			if sessionID == "" {
				continue
			}
			b.sink.Broadcast(sessionID, json.RawMessage(msg.Payload))
		}
	}
}

// Ready is closed once Run is subscribed.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

func Channel(sessionID string) string {
	return channelPrefix + sessionID + channelSuffix
}

// SessionFromChannel extracts the session id from govv:session:{id}:live.
func SessionFromChannel(ch string) string {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
