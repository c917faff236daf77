package postercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/db"
	"github.com/kailas-cloud/movierec/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "poster:"

// notFoundMarker is stored for titles the provider has no poster for.
const notFoundMarker = "-"

// store is the consumer interface for the poster cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds cache lifetimes.
type Config struct {
	TTL         time.Duration // found posters
	NotFoundTTL time.Duration // provider had no poster; 0 disables negative caching
}

// CachedLookup caches poster URLs in a key-value store.
type CachedLookup struct {
	inner      domain.PosterLookup
	store      store
	cfg        Config
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.PosterLookup,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedLookup {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &CachedLookup{
		inner:      inner,
		store:      s,
		cfg:        cfg,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Lookup returns a cached poster URL or calls the inner provider.
// Provider failures other than not-found are never cached.
func (c *CachedLookup) Lookup(ctx context.Context, title string) (string, error) {
	key := c.cacheKey(title)

	if val, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		if val == notFoundMarker {
			return "", domain.ErrPosterNotFound
		}
		return val, nil
	}

	c.incCache("miss")

	url, err := c.inner.Lookup(ctx, title)
	if err != nil {
		if errors.Is(err, domain.ErrPosterNotFound) && c.cfg.NotFoundTTL > 0 {
			c.putToCache(ctx, key, notFoundMarker, c.cfg.NotFoundTTL)
		}
		return "", fmt.Errorf("lookup poster: %w", err)
	}

	if url != "" {
		c.putToCache(ctx, key, url, c.cfg.TTL)
	}
	return url, nil
}

// HealthCheck delegates to the inner provider when it supports health checks.
func (c *CachedLookup) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedLookup) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the normalized title so keys stay short and binary-safe.
func (c *CachedLookup) cacheKey(title string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedLookup) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached poster", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedLookup) putToCache(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.store.SetWithTTL(ctx, key, []byte(value), ttl); err != nil {
		c.logger.Warn("Failed to cache poster", zap.String("key", key), zap.Error(err))
	}
}
