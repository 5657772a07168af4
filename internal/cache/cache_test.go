package cache

import (
	"context"
	"testing"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

func TestNoopProductCacheAlwaysMisses(t *testing.T) {
	var c ProductCache = NoopProductCache{}
	ctx := context.Background()

	if err := c.Set(ctx, ActiveProductsKey, []domain.Product{{ID: "prd-1"}}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	products, ok, err := c.Get(ctx, ActiveProductsKey)
	if err != nil || ok || products != nil {
		t.Fatalf("expected miss, got %v %v %v", products, ok, err)
	}
	if err := c.Delete(ctx, ActiveProductsKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestRedisProductCacheRoundTrip(t *testing.T) {
	c := NewRedisProductCache(NewRedisClient("127.0.0.1:6379", "", 15))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	key := "pos:test:products"
	t.Cleanup(func() { _ = c.Delete(context.Background(), key) })

	want := []domain.Product{{ID: "prd-1", Code: "CER-1", Name: "Cerveza", Stock: 4, Active: true}}
	if err := c.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != "prd-1" || got[0].Stock != 4 {
		t.Fatalf("unexpected products: %+v", got)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatal("expected miss after delete")
	}
}
