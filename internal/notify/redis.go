package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisPublisher is the subset of the go-redis client used here.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes events on per-owner Redis channels.
type RedisPublisher struct {
	client redisPublisher
	prefix string
	now    func() time.Time
}

// NewRedisPublisher creates a publisher. An empty prefix uses DefaultChannelPrefix.
func NewRedisPublisher(client redisPublisher, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Publish marshals the event envelope and sends it with PUBLISH.
func (p *RedisPublisher) Publish(ctx context.Context, ownerID, event string, payload any) error {
	data, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Name:      event,
		OwnerID:   ownerID,
		Payload:   payload,
		EmittedAt: p.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, ChannelKey(p.prefix, ownerID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}
