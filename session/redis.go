// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to session ids to form redis keys.
const DefaultRedisPrefix = "session:"

// RedisBackend is a Backend storing sessions in redis, which lets several
// instances of an application share sessions.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// ensure that RedisBackend implements the Backend interface
var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a RedisBackend using client. An empty prefix
// selects DefaultRedisPrefix.
func NewRedisBackend(client redis.UniversalClient, prefix string) (*RedisBackend, error) {
	const op = "session.NewRedisBackend"
	if client == nil {
		return nil, fmt.Errorf("%s: redis client is nil: %w", op, ErrNilParameter)
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

// DialRedis connects to the redis server at redisURL (for example
// "redis://:password@localhost:6379/0") and checks it's reachable.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	const op = "session.DialRedis"
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid redis url: %w", op, ErrInvalidParameter)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: redis ping failed: %w", op, err)
	}
	return client, nil
}

func (b *RedisBackend) key(k string) string {
	return b.prefix + k
}

// Get implements Backend.Get.
func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "RedisBackend.Get"
	v, err := b.client.Get(ctx, b.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

// Set implements Backend.Set.
func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const op = "RedisBackend.Set"
	if ttl < 0 {
		ttl = 0
	}
	if err := b.client.Set(ctx, b.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete implements Backend.Delete.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	const op = "RedisBackend.Delete"
	if err := b.client.Del(ctx, b.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
