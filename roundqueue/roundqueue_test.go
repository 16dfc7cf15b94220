package roundqueue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	q, err := New(context.Background(), Config{RedisURL: "redis://" + mr.Addr(), KeyPrefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q, mr
}

func TestSendPushesOntoPerSeverityList(t *testing.T) {
	q, mr := newTestQueue(t)

	require.NoError(t, q.Send(context.Background(), "critical", "disk full"))

	vals, err := mr.List("test:alarms:critical")
	require.NoError(t, err)
	require.Equal(t, []string{"disk full"}, vals)
}

func TestAnnounceRoundPublishesJSONEvent(t *testing.T) {
	q, _ := newTestQueue(t)

	rdb := goredis.NewClient(&goredis.Options{Addr: q.client.Options().Addr})
	defer rdb.Close()

	sub := rdb.Subscribe(context.Background(), q.roundChannel())
	defer sub.Close()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	require.NoError(t, q.AnnounceRound(context.Background(), "trace-1", 2))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var evt roundEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
	require.Equal(t, "trace-1", evt.TraceID)
	require.Equal(t, 2, evt.Round)
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	_, err := New(context.Background(), Config{RedisURL: "redis://127.0.0.1:1"})
	require.Error(t, err)
}
