package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"menuplanner/menu"
)

const redisKeyFormat = "menu_snapshot_v1:%s"

// RedisStore persists snapshots as JSON blobs in Redis. TTL is optional
// (zero means no expiry); deployments that want the posted menu refreshed
// mid-day opt in through it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) redisKey(key Key) string {
	return fmt.Sprintf(redisKeyFormat, key.String())
}

func (s *RedisStore) Get(ctx context.Context, key Key) (menu.MenuSnapshot, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu snapshot from redis: %w", err)
	}

	var snapshot menu.MenuSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("decode menu snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *RedisStore) Put(ctx context.Context, key Key, snapshot menu.MenuSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode menu snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.redisKey(key), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set menu snapshot in redis: %w", err)
	}
	return nil
}
