package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/louisbranch/seabattle/internal/services/match/notify"
	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

// Channel is the Redis pub/sub channel outcomes are published on.
const Channel = "seabattle:outcomes"

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes outcomes on a Redis channel.
type RedisPublisher struct {
	client  publisher
	closer  func() error
	channel string
	encode  func(any) ([]byte, error)
}

// NewRedisPublisher connects to redisURL (redis:// or rediss://) and checks
// the server answers. codec selects the payload encoding (json or msgpack).
func NewRedisPublisher(ctx context.Context, redisURL, codec string) (*RedisPublisher, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	p, err := newRedisPublisher(rdb, codec)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	p.closer = rdb.Close
	return p, nil
}

func newRedisPublisher(client publisher, codec string) (*RedisPublisher, error) {
	p := &RedisPublisher{client: client, channel: Channel}
	switch strings.ToLower(strings.TrimSpace(codec)) {
	case "", notify.CodecJSON:
		p.encode = json.Marshal
	case notify.CodecMsgpack:
		p.encode = msgpack.Marshal
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
	return p, nil
}

// Publish sends the outcome to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, outcome storage.Outcome) error {
	payload, err := p.encode(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}
