package numbering

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const sequenceKeyPrefix = "pos:invoice-seq:"

// FloorFunc reports the highest sequence already persisted for a day.
type FloorFunc func(ctx context.Context, day time.Time) (int64, error)

// RedisSequencer keeps one INCR counter per issue date. Keys expire two days
// after their last use. A missing key is seeded from floor first, so a
// flushed or failed-over Redis resumes above the ids already stored.
type RedisSequencer struct {
	client *redis.Client
	ttl    time.Duration
	floor  FloorFunc
}

// NewRedisSequencer builds a sequencer; floor may be nil.
func NewRedisSequencer(client *redis.Client, floor FloorFunc) *RedisSequencer {
	return &RedisSequencer{client: client, ttl: 48 * time.Hour, floor: floor}
}

func (s *RedisSequencer) Next(ctx context.Context, day time.Time) (int64, error) {
	key := sequenceKeyPrefix + DayKey(day)

	if err := s.seed(ctx, key, day); err != nil {
		return 0, err
	}

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisSequencer) seed(ctx context.Context, key string, day time.Time) error {
	if s.floor == nil {
		return nil
	}
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil || exists > 0 {
		return err
	}
	floor, err := s.floor(ctx, day)
	if err != nil {
		return fmt.Errorf("invoice sequence floor: %w", err)
	}
	// SETNX: concurrent seeders agree on the first value written.
	return s.client.SetNX(ctx, key, floor, s.ttl).Err()
}
