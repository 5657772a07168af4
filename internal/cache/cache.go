package cache

import (
	"context"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

// ActiveProductsKey holds the active catalog listing served to the register.
const ActiveProductsKey = "pos:products:active"

// ProductCache holds read-mostly product listings. Any stock or catalog
// change must Delete the affected key.
type ProductCache interface {
	Get(ctx context.Context, key string) ([]domain.Product, bool, error)
	Set(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context, _ string) ([]domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ string, _ []domain.Product, _ time.Duration) error {
	return nil
}

func (NoopProductCache) Delete(_ context.Context, _ ...string) error {
	return nil
}
