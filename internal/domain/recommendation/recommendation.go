package recommendation

import "github.com/kailas-cloud/movierec/internal/domain/poster"

// Candidate is a ranked similar movie.
type Candidate struct {
	title    string
	position int
	score    float64
}

// NewCandidate creates a ranked candidate.
func NewCandidate(title string, position int, score float64) Candidate {
	return Candidate{title: title, position: position, score: score}
}

// Title returns the candidate title.
func (c Candidate) Title() string { return c.title }

// Position returns the candidate position in the catalog.
func (c Candidate) Position() int { return c.position }

// Score returns the similarity score to the query.
func (c Candidate) Score() float64 { return c.score }

// Recommendation is a ranked candidate with its resolved poster.
type Recommendation struct {
	Candidate
	poster poster.Poster
}

// New attaches a poster to a candidate.
func New(c Candidate, p poster.Poster) Recommendation {
	return Recommendation{Candidate: c, poster: p}
}

// Poster returns the resolved poster.
func (r Recommendation) Poster() poster.Poster { return r.poster }

// Titles extracts candidate titles in rank order.
func Titles(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.title
	}
	return out
}
