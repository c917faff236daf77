package health

import "context"

// CatalogSizer reports how many titles are loaded.
type CatalogSizer interface {
	Len() int
}

// CachePinger checks poster cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// PosterChecker checks poster provider availability.
type PosterChecker interface {
	HealthCheck(ctx context.Context) error
}
