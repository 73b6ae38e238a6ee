package output

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisRelay forwards messages to Redis pub/sub so a separate chat bot
// process can deliver them. Messages are queued and published from Run;
// Publish drops messages when the queue is full.
type RedisRelay struct {
	client  redis.UniversalClient
	prefix  string
	queue   chan Message
	logger  *slog.Logger
	dropped atomic.Int64
}

func NewRedisRelay(client redis.UniversalClient, prefix string, size int, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{
		client: client,
		prefix: prefix,
		queue:  make(chan Message, size),
		logger: logger,
	}
}

// Topic returns the pub/sub channel used for a community.
func (r *RedisRelay) Topic(community CommunityID) string {
	return fmt.Sprintf("%s:%s", r.prefix, community)
}

func (r *RedisRelay) Publish(msg Message) {
	select {
	case r.queue <- msg:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			r.logger.Warn("redis relay queue full, dropping message", "dropped", n)
		}
	}
}

// Dropped reports how many messages were discarded because the queue was full.
func (r *RedisRelay) Dropped() int64 {
	return r.dropped.Load()
}

// Run publishes queued messages until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-r.queue:
			if err := r.send(ctx, msg); err != nil {
				r.logger.Error("redis publish failed", "community", string(msg.Community), "error", err)
			}
		}
	}
}

func (r *RedisRelay) send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	if err := r.client.Publish(ctx, r.Topic(msg.Community), data).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", r.Topic(msg.Community), err)
	}
	return nil
}
