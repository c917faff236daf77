package movierec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/db"
	dbRedis "github.com/kailas-cloud/movierec/internal/db/redis"
	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/domain/catalog"
	domposter "github.com/kailas-cloud/movierec/internal/domain/poster"
	"github.com/kailas-cloud/movierec/internal/domain/recommendation"
	"github.com/kailas-cloud/movierec/internal/domain/similarity"
	"github.com/kailas-cloud/movierec/internal/repository/artifact"
	"github.com/kailas-cloud/movierec/internal/repository/postercache"
	"github.com/kailas-cloud/movierec/internal/transport/tmdb"
	healthuc "github.com/kailas-cloud/movierec/internal/usecase/health"
	posteruc "github.com/kailas-cloud/movierec/internal/usecase/poster"
	rankuc "github.com/kailas-cloud/movierec/internal/usecase/rank"
	recommenduc "github.com/kailas-cloud/movierec/internal/usecase/recommend"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultNotFoundTTL      = time.Hour
)

// Internal interfaces, swapped for fakes in tests.
type rankUseCase interface {
	Similar(title string) ([]recommendation.Candidate, error)
}

type posterUseCase interface {
	Fetch(ctx context.Context, titles []string) map[string]domposter.Poster
}

type recommendUseCase interface {
	Recommend(ctx context.Context, title string) ([]recommendation.Recommendation, error)
	Titles() []string
}

// Client is the movierec SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	rankSvc   rankUseCase
	posterSvc posterUseCase
	recSvc    recommendUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads the artifacts and wires the recommendation pipeline.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	cat, mat, err := loadArtifacts(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("movierec: cache not ready: %w", err)
		}
	}

	c, err := wireClient(cat, mat, store, cfg, obs)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func loadArtifacts(cfg *clientConfig) (*catalog.Catalog, *similarity.Matrix, error) {
	if cfg.titles != nil {
		movies := make([]catalog.Movie, len(cfg.titles))
		for i, t := range cfg.titles {
			movies[i] = catalog.NewMovie(0, t)
		}
		cat, err := catalog.New(movies)
		if err != nil {
			return nil, nil, fmt.Errorf("movierec: %w: %w", domain.ErrInvalidArtifact, err)
		}
		mat, err := similarity.FromRows(cfg.rows)
		if err != nil {
			return nil, nil, fmt.Errorf("movierec: %w: %w", domain.ErrInvalidArtifact, err)
		}
		return cat, mat, nil
	}

	if cfg.catalogPath == "" || cfg.matrixPath == "" {
		return nil, nil, errors.New("movierec: artifacts required (use WithArtifacts or WithData)")
	}
	arts, err := artifact.Load(cfg.catalogPath, cfg.matrixPath)
	if err != nil {
		return nil, nil, fmt.Errorf("movierec: %w", err)
	}
	return arts.Catalog, arts.Matrix, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("movierec: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("movierec: unknown driver %q", cfg.driver)
	}
}

func wireClient(
	cat *catalog.Catalog, mat *similarity.Matrix, store db.Store, cfg *clientConfig, obs *observer,
) (*Client, error) {
	rankSvc, err := rankuc.New(cat, mat)
	if err != nil {
		return nil, fmt.Errorf("movierec: %w", err)
	}
	rankSvc = rankSvc.WithLimit(cfg.limit).WithSelfRankObserver(obs.selfRank)

	lookup := buildLookup(cfg, store)
	posterSvc := posteruc.NewFetcher(lookup, zap.NewNop()).WithWorkers(cfg.workers)
	if obs.metrics != nil {
		posterSvc = posterSvc.WithOutcomeCounter(obs.metrics.posters)
	}

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	var posterChecker healthuc.PosterChecker
	if hc, ok := lookup.(domain.HealthChecker); ok {
		posterChecker = hc
	}

	return &Client{
		store:     store,
		rankSvc:   rankSvc,
		posterSvc: posterSvc,
		recSvc:    recommenduc.New(rankSvc, posterSvc, cat),
		healthSvc: healthuc.New(cat, cachePinger, posterChecker),
		obs:       obs,
	}, nil
}

// buildLookup assembles provider -> guard -> cache. Without a provider every
// poster is missing.
func buildLookup(cfg *clientConfig, store db.Store) domain.PosterLookup {
	var lookup domain.PosterLookup
	switch {
	case cfg.lookup != nil:
		lookup = cfg.lookup
	case cfg.tmdbKey != "" || cfg.tmdbToken != "":
		lookup = tmdb.NewClient(&tmdb.Config{
			APIKey:       cfg.tmdbKey,
			AccessToken:  cfg.tmdbToken,
			BaseURL:      cfg.tmdbBaseURL,
			ImageBaseURL: cfg.tmdbImageBaseURL,
		})
	default:
		return domain.PosterLookupFunc(func(context.Context, string) (string, error) {
			return "", domain.ErrPosterNotFound
		})
	}

	lookup = posteruc.NewGuardedLookup(lookup, posteruc.GuardConfig{
		Name:       "sdk",
		RatePerSec: cfg.ratePerSec,
		Burst:      cfg.burst,
	}, zap.NewNop())

	if store != nil {
		lookup = postercache.New(lookup, store, postercache.Config{
			TTL:         cfg.cacheTTL,
			NotFoundTTL: defaultNotFoundTTL,
		}, nil, zap.NewNop())
	}
	return lookup
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Titles returns every catalog title in catalog order.
func (c *Client) Titles() []string {
	return c.recSvc.Titles()
}

// Similar ranks the movies most similar to title, best first, excluding title itself.
func (c *Client) Similar(title string) (_ []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err, "title", title) }()

	cands, err := c.rankSvc.Similar(title)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	out := make([]Match, len(cands))
	for i, cand := range cands {
		out[i] = matchFromDomain(cand)
	}
	return out, nil
}

// Recommend returns similar movies with their posters, in rank order.
// Poster failures never fail the call; the affected entries have Poster.Found == false.
func (c *Client) Recommend(ctx context.Context, title string) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err, "title", title) }()

	recs, err := c.recSvc.Recommend(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = recommendationFromDomain(r)
	}
	return out, nil
}

// FetchPosters resolves posters for titles concurrently. Every distinct title
// is present in the result.
func (c *Client) FetchPosters(ctx context.Context, titles []string) map[string]Poster {
	start := time.Now()
	defer func() { c.obs.observe("fetch_posters", start, nil, "titles", len(titles)) }()

	posters := c.posterSvc.Fetch(ctx, titles)
	out := make(map[string]Poster, len(posters))
	for t, p := range posters {
		out[t] = posterFromDomain(p)
	}
	return out
}
