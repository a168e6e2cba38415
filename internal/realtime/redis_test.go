package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifierPublishesToTableChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := client.Subscribe(context.Background(), ChannelPrefix+"products")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	notifier := NewRedisNotifier(client)
	err = notifier.Publish(context.Background(), Event{Table: "products", ID: "p-1", Op: OpUpdate})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var event Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, "products", event.Table)
		require.Equal(t, "p-1", event.ID)
		require.Equal(t, OpUpdate, event.Op)
		require.False(t, event.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestNoopNotifier(t *testing.T) {
	require.NoError(t, Noop{}.Publish(context.Background(), Event{Table: "orders", ID: "o-1", Op: OpDelete}))
}
