package recommend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain/poster"
	"github.com/kailas-cloud/movierec/internal/domain/recommendation"
	"github.com/kailas-cloud/movierec/internal/logger"
)

// Service answers "more like this" queries: rank, then resolve posters.
type Service struct {
	ranker  Ranker
	posters PosterFetcher
	titles  TitleLister
}

// New creates a recommendation service.
func New(ranker Ranker, posters PosterFetcher, titles TitleLister) *Service {
	return &Service{ranker: ranker, posters: posters, titles: titles}
}

// Titles returns every catalog title for the selection input.
func (s *Service) Titles() []string {
	return s.titles.Titles()
}

// Recommend ranks movies similar to title and attaches their posters in rank order.
// Ranking errors are returned; poster failures only yield missing posters.
func (s *Service) Recommend(ctx context.Context, title string) ([]recommendation.Recommendation, error) {
	log := logger.FromContext(ctx)

	candidates, err := s.ranker.Similar(title)
	if err != nil {
		return nil, fmt.Errorf("rank similar: %w", err)
	}

	start := time.Now()
	posters := s.posters.Fetch(ctx, recommendation.Titles(candidates))

	out := make([]recommendation.Recommendation, len(candidates))
	missing := 0
	for i, c := range candidates {
		p, ok := posters[c.Title()]
		if !ok {
			p = poster.Missing()
		}
		if !p.IsFound() {
			missing++
		}
		out[i] = recommendation.New(c, p)
	}

	log.Debug("Recommendations resolved",
		zap.String("title", title),
		zap.Int("results", len(out)),
		zap.Int("missing_posters", missing),
		zap.Duration("poster_latency", time.Since(start)),
	)
	return out, nil
}
