package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

type RedisProductCache struct {
	client *redis.Client
}

// NewRedisClient builds the shared client used by the product cache and the
// invoice sequencer.
func NewRedisClient(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisProductCache(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{client: client}
}

func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisProductCache) Get(ctx context.Context, key string) ([]domain.Product, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []domain.Product
	if err := json.Unmarshal(val, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error {
	if products == nil {
		return nil
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisProductCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
