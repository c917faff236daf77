package postercache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/db"
)

type mockLookup struct {
	url   string
	err   error
	calls int
}

func (m *mockLookup) Lookup(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.url, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedLookup(t *testing.T, inner *mockLookup, cfg Config) (*CachedLookup, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, cfg, nil, zap.NewNop()), ms
}
