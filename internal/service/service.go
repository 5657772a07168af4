package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/cache"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/numbering"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/xid"
)

const (
	defaultLowStockLimit = 10
	defaultCacheTTL      = 30 * time.Second
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	// Cache defaults to a no-op cache.
	Cache    cache.ProductCache
	CacheTTL time.Duration
	// Sequencer replaces the store's per-day counter when set.
	Sequencer numbering.Sequencer
	Logger    *log.Logger
	// Location decides which calendar day an invoice belongs to.
	Location      *time.Location
	Now           func() time.Time
	LowStockLimit int
}

type Service struct {
	repo          store.Repository
	cache         cache.ProductCache
	cacheTTL      time.Duration
	sequencer     numbering.Sequencer
	logger        *log.Logger
	loc           *time.Location
	now           func() time.Time
	lowStockLimit int
}

func New(repo store.Repository, opts Options) *Service {
	s := &Service{
		repo:          repo,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		sequencer:     opts.Sequencer,
		logger:        opts.Logger,
		loc:           opts.Location,
		now:           opts.Now,
		lowStockLimit: opts.LowStockLimit,
	}
	if s.cache == nil {
		s.cache = cache.NoopProductCache{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultCacheTTL
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.lowStockLimit < 1 {
		s.lowStockLimit = defaultLowStockLimit
	}
	return s
}

func requireAdmin(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Actor{}, store.ErrAdminRequired
	}
	return actor, nil
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.Username
	}
	return "system"
}

// localNow is the current instant in the business time zone.
func (s *Service) localNow() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) invalidateProducts(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.ActiveProductsKey); err != nil {
		s.logger.Printf("[service] WARN: failed to invalidate product cache: %v", err)
	}
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     s.now().UTC(),
	}); err != nil {
		s.logger.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

// resolve maps a missing row onto a ReferenceError of the given kind.
func resolve[T any](kind string, id string, get func() (*T, error)) (*T, error) {
	if id == "" {
		return nil, &store.ReferenceError{Kind: kind}
	}
	v, err := get()
	if errors.Is(err, store.ErrNotFound) {
		return nil, &store.ReferenceError{Kind: kind, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
