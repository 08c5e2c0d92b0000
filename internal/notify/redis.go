package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/provider/internal/logger"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "provider:changes"

// PublishTimeout bounds a single PUBLISH so Notify cannot stall a mutation
// on an unreachable server.
const PublishTimeout = 2 * time.Second

// Event is the JSON payload published for every change.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Origin  uuid.UUID `json:"origin"`
	Locator string    `json:"locator"`
	At      time.Time `json:"at"`
}

// Redis publishes change notifications to a Redis channel and bridges
// notifications from other processes into a local notifier.
type Redis struct {
	client  *redis.Client
	channel string
	origin  uuid.UUID
}

var _ types.Notifier = (*Redis)(nil)

// NewRedis returns a notifier publishing on channel. An empty channel
// means DefaultChannel.
func NewRedis(client *redis.Client, channel string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: client, channel: channel, origin: uuid.New()}, nil
}

// Channel returns the pub/sub channel name.
func (r *Redis) Channel() string {
	return r.channel
}

// Origin identifies events published by this notifier.
func (r *Redis) Origin() uuid.UUID {
	return r.origin
}

// Notify publishes l. Failures are logged and dropped.
func (r *Redis) Notify(l types.Locator) {
	ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
	defer cancel()
	if err := r.Publish(ctx, l); err != nil {
		logger.Default().WithFields(logrus.Fields{
			"channel": r.channel,
			"locator": l.String(),
		}).WithError(err).Warn("publish change")
	}
}

// Publish sends an event for l.
func (r *Redis) Publish(ctx context.Context, l types.Locator) error {
	payload, err := json.Marshal(Event{
		ID:      uuid.New(),
		Origin:  r.origin,
		Locator: l.String(),
		At:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Listen subscribes to the channel and forwards every event published by
// another process to dst until ctx ends. Events this notifier published
// itself are skipped, since dst already saw them. Malformed events are
// logged and skipped.
func (r *Redis) Listen(ctx context.Context, dst types.Notifier) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	log := logger.FromContext(ctx).WithField("channel", r.channel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				log.WithError(err).Warn("skip event")
				continue
			}
			if ev.Origin == r.origin {
				continue
			}
			l, err := types.ParseLocator(ev.Locator)
			if err != nil {
				log.WithError(err).Warn("skip event")
				continue
			}
			dst.Notify(l)
		}
	}
}

// DecodeEvent parses a published payload.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
