package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"wimitasks/internal/models"
)

// RedisStore persists the identity under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore stores the identity under key. A zero ttl keeps it until logout.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session.NewRedisStore: client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, id models.Identity) error {
	raw, err := sonic.ConfigStd.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (*models.Identity, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var id models.Identity
	if err := sonic.ConfigStd.Unmarshal(raw, &id); err != nil {
		_ = r.client.Del(ctx, r.key).Err()
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	return &id, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
