package poster

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain"
)

type countingLookup struct {
	calls atomic.Int64
	err   error
	url   string
	hcErr error
}

func (m *countingLookup) Lookup(context.Context, string) (string, error) {
	m.calls.Add(1)
	return m.url, m.err
}

func (m *countingLookup) HealthCheck(context.Context) error { return m.hcErr }

func TestGuardedLookup_PassesThrough(t *testing.T) {
	inner := &countingLookup{url: "https://img/x.jpg"}
	g := NewGuardedLookup(inner, GuardConfig{}, zap.NewNop())

	url, err := g.Lookup(context.Background(), "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://img/x.jpg" {
		t.Errorf("url = %q", url)
	}
	if g.State() != "closed" {
		t.Errorf("State() = %q, want closed", g.State())
	}
}

func TestGuardedLookup_OpensAfterFailures(t *testing.T) {
	inner := &countingLookup{err: errors.New("503")}
	g := NewGuardedLookup(inner, GuardConfig{
		Name:             "test-open",
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}, zap.NewNop())

	ctx := context.Background()
	for range 3 {
		if _, err := g.Lookup(ctx, "X"); err == nil {
			t.Fatal("expected provider error")
		}
	}
	if g.State() != "open" {
		t.Fatalf("State() = %q, want open", g.State())
	}

	_, err := g.Lookup(ctx, "X")
	if !errors.Is(err, domain.ErrPosterProviderError) {
		t.Fatalf("expected ErrPosterProviderError from open breaker, got %v", err)
	}
	if inner.calls.Load() != 3 {
		t.Errorf("open breaker should not call the provider: calls = %d", inner.calls.Load())
	}
}

func TestGuardedLookup_NotFoundDoesNotTrip(t *testing.T) {
	inner := &countingLookup{err: domain.ErrPosterNotFound}
	g := NewGuardedLookup(inner, GuardConfig{FailureThreshold: 2}, zap.NewNop())

	for range 5 {
		_, err := g.Lookup(context.Background(), "X")
		if !errors.Is(err, domain.ErrPosterNotFound) {
			t.Fatalf("expected ErrPosterNotFound, got %v", err)
		}
	}
	if g.State() != "closed" {
		t.Errorf("State() = %q, not-found must not trip the breaker", g.State())
	}
	if inner.calls.Load() != 5 {
		t.Errorf("calls = %d, want 5", inner.calls.Load())
	}
}

func TestGuardedLookup_RateLimitHonorsContext(t *testing.T) {
	inner := &countingLookup{url: "u"}
	g := NewGuardedLookup(inner, GuardConfig{RatePerSec: 0.001, Burst: 1}, zap.NewNop())

	if _, err := g.Lookup(context.Background(), "first"); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := g.Lookup(ctx, "second"); err == nil {
		t.Fatal("expected rate limit wait to fail with a short deadline")
	}
	if inner.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", inner.calls.Load())
	}
}

func TestGuardedLookup_HealthCheck(t *testing.T) {
	inner := &countingLookup{hcErr: errors.New("down")}
	g := NewGuardedLookup(inner, GuardConfig{}, zap.NewNop())
	if err := g.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error from provider")
	}

	plain := domain.PosterLookupFunc(func(context.Context, string) (string, error) { return "", nil })
	if err := NewGuardedLookup(plain, GuardConfig{}, zap.NewNop()).HealthCheck(context.Background()); err != nil {
		t.Errorf("provider without HealthCheck should be healthy: %v", err)
	}
}

func TestGuardedLookup_WithFetcher(t *testing.T) {
	inner := &countingLookup{err: errors.New("down")}
	g := NewGuardedLookup(inner, GuardConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, zap.NewNop())
	f := NewFetcher(g, zap.NewNop()).WithWorkers(1)

	got := f.Fetch(context.Background(), []string{"a", "b", "c", "d", "e"})
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	for title, p := range got {
		if p.IsFound() {
			t.Errorf("%s: expected missing poster", title)
		}
	}
	if inner.calls.Load() != 2 {
		t.Errorf("breaker should stop calls after 2 failures, calls = %d", inner.calls.Load())
	}
}
