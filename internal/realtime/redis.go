package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces the pub/sub channels, one channel per table.
const ChannelPrefix = "comptoir:changes:"

// RedisNotifier publishes change events on redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier constructs a RedisNotifier.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Publish sends the event to the table's channel.
func (n *RedisNotifier) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("realtime: marshal event: %w", err)
	}
	if err := n.client.Publish(ctx, ChannelPrefix+event.Table, payload).Err(); err != nil {
		return fmt.Errorf("realtime: publish: %w", err)
	}
	return nil
}
