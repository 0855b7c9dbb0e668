package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/appointment-scheduler/pkg/circuitbreaker"
)

type RedisConfig struct {
	URL          string
	Prefix       string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// Redis is a cache shared between instances. Calls go through a circuit
// breaker so an unavailable server fails fast.
type Redis struct {
	client *redis.Client
	prefix string
	cb     *circuitbreaker.CircuitBreaker
}

func NewRedis(ctx context.Context, config RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(client, config.Prefix), nil
}

func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-cache",
			MaxFailures: 5,
			Interval:    10 * time.Second,
			Timeout:     5 * time.Second,
		}),
	}
}

func (r *Redis) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	var data []byte
	err := r.cb.Execute(func() error {
		var err error
		data, err = r.client.Get(ctx, r.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	return r.cb.Execute(func() error {
		return r.client.Set(ctx, r.prefix+key, data, ttl).Err()
	})
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.cb.Execute(func() error {
		return r.client.Del(ctx, r.prefix+key).Err()
	})
}

func (r *Redis) Close() error {
	return r.client.Close()
}
