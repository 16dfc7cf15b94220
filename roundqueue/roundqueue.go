// Package roundqueue is a Redis-backed side channel for two optional,
// out-of-process concerns: alarm delivery (satisfying collab.AlarmDelivery)
// and round-drained announcements an external monitor-log subscriber can
// listen on independently of the in-process monitor.Sink. Neither the
// executor nor the action runner requires Redis to be reachable for the
// core cascade to complete; both integrations are additive.
package roundqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evalgo-labs/pipeflow/collab"
)

// Config configures the Redis connection and key/channel naming.
type Config struct {
	RedisURL  string // defaults to ROUNDQUEUE_REDIS_URL or redis://localhost:6379/0
	KeyPrefix string // defaults to "roundqueue:"
}

// Queue is the Redis-backed collaborator: alarms land on a list per
// severity, round announcements are published on a pub/sub channel.
type Queue struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies reachability with a Ping, the same
// connect-then-verify sequence queue/redis/queue.go's NewQueue follows.
func New(ctx context.Context, cfg Config) (*Queue, error) {
	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = os.Getenv("ROUNDQUEUE_REDIS_URL")
	}
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "roundqueue:"
	}
	return &Queue{client: client, prefix: prefix}, nil
}

// Close closes the underlying Redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) alarmKey(severity collab.AlarmSeverity) string {
	return fmt.Sprintf("%salarms:%s", q.prefix, severity)
}

// Send implements collab.AlarmDelivery by pushing the rendered message onto
// a per-severity list; an external alerting consumer drains it.
func (q *Queue) Send(ctx context.Context, severity collab.AlarmSeverity, message string) error {
	return q.client.RPush(ctx, q.alarmKey(severity), message).Err()
}

// roundEvent is the payload published to the round announcement channel.
type roundEvent struct {
	TraceID   string    `json:"traceId"`
	Round     int       `json:"round"`
	DrainedAt time.Time `json:"drainedAt"`
}

func (q *Queue) roundChannel() string {
	return q.prefix + "rounds"
}

// AnnounceRound publishes a "round N of trace T drained" event; it
// satisfies executor.RoundAnnouncer structurally.
func (q *Queue) AnnounceRound(ctx context.Context, traceID string, round int) error {
	payload, err := json.Marshal(roundEvent{TraceID: traceID, Round: round, DrainedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal round event: %w", err)
	}
	return q.client.Publish(ctx, q.roundChannel(), payload).Err()
}

var _ collab.AlarmDelivery = (*Queue)(nil)
