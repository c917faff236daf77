package poster

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/metrics"
)

// GuardConfig holds rate limit and circuit breaker settings for a provider.
type GuardConfig struct {
	Name             string
	RatePerSec       float64 // 0 = unlimited
	Burst            int
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// GuardedLookup protects a poster provider with a token bucket and a
// circuit breaker. Not-found answers count as successes for the breaker.
type GuardedLookup struct {
	inner   domain.PosterLookup
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger
}

// NewGuardedLookup wraps inner with the given protections.
func NewGuardedLookup(inner domain.PosterLookup, cfg GuardConfig, logger *zap.Logger) *GuardedLookup {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "poster"
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrPosterNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Poster breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.PosterBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}

	return &GuardedLookup{
		inner:   inner,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

// Lookup waits for a rate-limit token and calls the provider through the breaker.
func (g *GuardedLookup) Lookup(ctx context.Context, title string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	url, err := g.breaker.Execute(func() (string, error) {
		return g.inner.Lookup(ctx, title)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", domain.ErrPosterProviderError, err)
		}
		return "", err
	}
	return url, nil
}

// State returns the breaker state name.
func (g *GuardedLookup) State() string {
	return g.breaker.State().String()
}

// HealthCheck delegates to the provider when it supports health checks.
func (g *GuardedLookup) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("poster provider health: %w", err)
		}
	}
	return nil
}
