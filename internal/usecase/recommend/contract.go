package recommend

import (
	"context"

	"github.com/kailas-cloud/movierec/internal/domain/poster"
	"github.com/kailas-cloud/movierec/internal/domain/recommendation"
)

// Ranker returns movies similar to a title, best first.
type Ranker interface {
	Similar(title string) ([]recommendation.Candidate, error)
}

// PosterFetcher resolves posters for a set of titles.
type PosterFetcher interface {
	Fetch(ctx context.Context, titles []string) map[string]poster.Poster
}

// TitleLister lists catalog titles in catalog order.
type TitleLister interface {
	Titles() []string
}
