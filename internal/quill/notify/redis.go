package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/quill/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel = "quill:events"
	publishTimeout = 3 * time.Second
)

// RedisPublisher publishes events as JSON on a pub/sub channel per recipient,
// "<channel>:<user id>", where the realtime gateway subscribes.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	wg      sync.WaitGroup
}

// NewRedisPublisher connects to redisURL and verifies the connection.
func NewRedisPublisher(ctx context.Context, redisURL, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("notify: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("notify: connect to redis: %w", err)
	}
	return NewRedisPublisherWithClient(client, channel), nil
}

func NewRedisPublisherWithClient(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Channel returns the channel events for userID are published on.
func (p *RedisPublisher) Channel(userID string) string {
	return p.channel + ":" + userID
}

// Notify publishes in the background. Failures are logged and dropped.
func (p *RedisPublisher) Notify(ctx context.Context, ev Event) {
	log := slogx.FromContext(ctx)

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error("notify: marshal event", slogx.Err(err))
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		if err := p.client.Publish(pubCtx, p.Channel(ev.RecipientID), payload).Err(); err != nil {
			log.Warn("notify: publish failed",
				"event", ev.Type, "recipient_id", ev.RecipientID, slogx.Err(err))
		}
	}()
}

// Ping checks the Redis connection for readiness probes.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close waits for in-flight publishes and closes the client.
func (p *RedisPublisher) Close() error {
	p.wg.Wait()
	return p.client.Close()
}
