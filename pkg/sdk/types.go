package movierec

import (
	"context"

	"github.com/kailas-cloud/movierec/internal/domain/poster"
	"github.com/kailas-cloud/movierec/internal/domain/recommendation"
)

// PosterLookup resolves a movie title to a poster image URL.
// Return ErrPosterNotFound when there is no image; any error leaves the
// title without a poster and never fails the whole request.
type PosterLookup interface {
	Lookup(ctx context.Context, title string) (string, error)
}

// Match is a ranked similar movie.
type Match struct {
	Title    string
	Position int // index in the catalog
	Score    float64
}

// Poster is a resolved poster. URL is empty when Found is false.
type Poster struct {
	URL   string
	Found bool
}

// Recommendation is a ranked similar movie with its poster.
type Recommendation struct {
	Match
	Poster Poster
}

func matchFromDomain(c recommendation.Candidate) Match {
	return Match{Title: c.Title(), Position: c.Position(), Score: c.Score()}
}

func posterFromDomain(p poster.Poster) Poster {
	url, found := p.URL()
	return Poster{URL: url, Found: found}
}

func recommendationFromDomain(r recommendation.Recommendation) Recommendation {
	return Recommendation{
		Match:  matchFromDomain(r.Candidate),
		Poster: posterFromDomain(r.Poster()),
	}
}
