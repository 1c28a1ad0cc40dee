package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shop-backend/models"
)

var ErrCacheMiss = errors.New("cache miss")

// CartCache is the fast path for cart snapshots. Writes are last-writer-wins;
// serialization of concurrent mutators happens above this layer.
type CartCache interface {
	Get(ctx context.Context, userKey string) ([]models.CartItem, error)
	Set(ctx context.Context, userKey string, items []models.CartItem, ttl time.Duration) error
	Delete(ctx context.Context, userKey string) error
}

type RedisCartCache struct {
	client *redis.Client
}

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{client: client}
}

func (c *RedisCartCache) Get(ctx context.Context, userKey string) ([]models.CartItem, error) {
	data, err := c.client.Get(ctx, cartCacheKey(userKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart payload failed: %w", err)
	}
	return items, nil
}

// Set stores the snapshot as JSON. A zero ttl means no expiry.
func (c *RedisCartCache) Set(ctx context.Context, userKey string, items []models.CartItem, ttl time.Duration) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart payload failed: %w", err)
	}

	if err := c.client.Set(ctx, cartCacheKey(userKey), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, userKey string) error {
	if err := c.client.Del(ctx, cartCacheKey(userKey)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartCacheKey(userKey string) string {
	return "cart:" + userKey
}
