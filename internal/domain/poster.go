package domain

import "context"

// KeyPrefix namespaces every key movierec writes to the KV store.
const KeyPrefix = "movierec:"

// PosterLookup resolves a movie title to a poster image URL.
// Implementations return ErrPosterNotFound when the provider has no image.
type PosterLookup interface {
	Lookup(ctx context.Context, title string) (string, error)
}

// HealthChecker verifies poster provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PosterLookupFunc adapts a plain function to PosterLookup.
type PosterLookupFunc func(ctx context.Context, title string) (string, error)

// Lookup calls f.
func (f PosterLookupFunc) Lookup(ctx context.Context, title string) (string, error) {
	return f(ctx, title)
}
