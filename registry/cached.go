package registry

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zero-day-ai/flowgraph/typeid"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cached is a read-through cache in front of another registry. Get is served from
// the cache when possible; writes go to the backing registry first and then update
// or evict the cached entry. List and Has always consult the backing registry.
type Cached[T Definition] struct {
	backend Registry[T]
	cache   *gocache.Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// CachedOption configures a Cached registry.
type CachedOption func(*cachedConfig)

type cachedConfig struct {
	expiration      time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger
}

// WithExpiration sets how long entries stay cached.
func WithExpiration(d time.Duration) CachedOption {
	return func(c *cachedConfig) {
		c.expiration = d
	}
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) CachedOption {
	return func(c *cachedConfig) {
		c.cleanupInterval = d
	}
}

// WithCacheLogger sets the logger for cache diagnostics.
func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *cachedConfig) {
		c.logger = logger
	}
}

// NewCached wraps backend with an in-memory cache.
func NewCached[T Definition](backend Registry[T], opts ...CachedOption) *Cached[T] {
	cfg := cachedConfig{
		expiration:      DefaultExpiration,
		cleanupInterval: DefaultCleanupInterval,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cached[T]{
		backend: backend,
		cache:   gocache.New(cfg.expiration, cfg.cleanupInterval),
		ttl:     cfg.expiration,
		logger:  cfg.logger,
	}
}

func (c *Cached[T]) Register(ctx context.Context, def T) error {
	if err := c.backend.Register(ctx, def); err != nil {
		c.cache.Delete(cacheKey(def.TypeID()))
		return err
	}
	c.cache.Set(cacheKey(def.TypeID()), def, c.ttl)
	return nil
}

func (c *Cached[T]) Get(ctx context.Context, ty typeid.TypeID) (T, error) {
	key := cacheKey(ty)
	if value, found := c.cache.Get(key); found {
		if def, ok := value.(T); ok {
			c.logger.DebugContext(ctx, "cache hit", "type", ty.String())
			return def, nil
		}
		c.logger.ErrorContext(ctx, "wrong type assertion when getting value", "type", ty.String())
		c.cache.Delete(key)
	}

	def, err := c.backend.Get(ctx, ty)
	if err != nil {
		return def, err
	}
	c.cache.Set(key, def, c.ttl)
	return def, nil
}

func (c *Cached[T]) Has(ctx context.Context, ty typeid.TypeID) (bool, error) {
	return c.backend.Has(ctx, ty)
}

func (c *Cached[T]) List(ctx context.Context) ([]T, error) {
	return c.backend.List(ctx)
}

func (c *Cached[T]) Delete(ctx context.Context, ty typeid.TypeID) error {
	c.cache.Delete(cacheKey(ty))
	return c.backend.Delete(ctx, ty)
}

// Flush evicts every cached entry.
func (c *Cached[T]) Flush() {
	c.cache.Flush()
}

var _ Registry[Definition] = (*Cached[Definition])(nil)
