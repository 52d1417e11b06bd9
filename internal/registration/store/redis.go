package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prospace/internal/registration/models"
	"prospace/pkg/platform/sentinel"
)

// RedisCache fronts draft lookups by email with a TTL-bounded cache. It is
// the injected key-value capability behind the wizard's local snapshot: a
// single writer (the draft service) owns it, readers treat the service's
// in-memory copy as authoritative after the first read.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, email string) (*models.Draft, error) {
	payload, err := c.client.Get(ctx, cacheKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached draft: %w", err)
	}
	var draft models.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal cached draft: %w", err)
	}
	return &draft, nil
}

func (c *RedisCache) Set(ctx context.Context, draft *models.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal cached draft: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(draft.Email), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached draft: %w", err)
	}
	return nil
}

func (c *RedisCache) Clear(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, cacheKey(email)).Err(); err != nil {
		return fmt.Errorf("clear cached draft: %w", err)
	}
	return nil
}

func cacheKey(email string) string {
	return "registration:draft:" + normalize(email)
}
