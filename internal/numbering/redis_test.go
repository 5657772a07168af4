package numbering

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func clearDays(t *testing.T, client *redis.Client, days ...time.Time) {
	t.Helper()
	keys := make([]string, 0, len(days))
	for _, day := range days {
		keys = append(keys, sequenceKeyPrefix+DayKey(day))
	}
	if err := client.Del(context.Background(), keys...).Err(); err != nil {
		t.Fatalf("clear keys: %v", err)
	}
	t.Cleanup(func() { _ = client.Del(context.Background(), keys...).Err() })
}

func TestRedisSequencerCountsPerDay(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	first := time.Date(2099, time.January, 2, 20, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 1)
	clearDays(t, client, first, second)

	seq := NewRedisSequencer(client, nil)
	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, first)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	got, err := seq.Next(ctx, second)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected a new day to start at 1, got %d", got)
	}

	ttl, err := client.TTL(ctx, sequenceKeyPrefix+DayKey(first)).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > 48*time.Hour {
		t.Fatalf("expected key to expire within 48h, got %v", ttl)
	}
}

func TestRedisSequencerResumesAboveStoredIDs(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	day := time.Date(2099, time.February, 3, 20, 0, 0, 0, time.UTC)
	clearDays(t, client, day)

	calls := 0
	seq := NewRedisSequencer(client, func(_ context.Context, d time.Time) (int64, error) {
		calls++
		if DayKey(d) != DayKey(day) {
			t.Fatalf("floor asked for %s", DayKey(d))
		}
		return 41, nil
	})

	got, err := seq.Next(ctx, day)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42 after seeding from stored ids, got %d", got)
	}
	if got, _ := seq.Next(ctx, day); got != 43 {
		t.Fatalf("expected 43, got %d", got)
	}
	if calls != 1 {
		t.Fatalf("expected floor to be read once, got %d", calls)
	}
}
