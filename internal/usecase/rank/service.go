package rank

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/domain/recommendation"
)

// DefaultLimit is the number of similar movies returned per query.
const DefaultLimit = 5

// Service ranks catalog movies by precomputed similarity to a query movie.
// It holds the loaded catalog and matrix for the process lifetime and is
// safe for concurrent use.
type Service struct {
	catalog  CatalogReader
	matrix   ScoreMatrix
	limit    int
	selfRank SelfRankObserver
}

// New creates a ranker. The matrix dimension must equal the catalog length.
func New(catalog CatalogReader, matrix ScoreMatrix) (*Service, error) {
	if catalog.Len() != matrix.Size() {
		return nil, fmt.Errorf("%w: catalog has %d movies, matrix is %dx%d",
			domain.ErrInvalidArtifact, catalog.Len(), matrix.Size(), matrix.Size())
	}
	return &Service{catalog: catalog, matrix: matrix, limit: DefaultLimit}, nil
}

// WithLimit overrides the number of results (values <= 0 are ignored).
func (s *Service) WithLimit(k int) *Service {
	if k > 0 {
		s.limit = k
	}
	return s
}

// WithSelfRankObserver installs a hook for rows where the query is not rank 0.
func (s *Service) WithSelfRankObserver(fn SelfRankObserver) *Service {
	s.selfRank = fn
	return s
}

// Limit returns the configured result count.
func (s *Service) Limit() int { return s.limit }

type scored struct {
	pos   int
	score float64
}

// Similar returns up to Limit() movies most similar to title, best first.
// The result has exactly min(Limit(), catalog size - 1) entries.
func (s *Service) Similar(title string) ([]recommendation.Candidate, error) {
	p, ok := s.catalog.Position(title)
	if !ok {
		return nil, domain.NewTitleNotFound(title)
	}

	row := s.matrix.Row(p)
	pairs := make([]scored, len(row))
	for j, v := range row {
		pairs[j] = scored{pos: j, score: float64(v)}
	}

	// Stable: equal scores keep catalog order. cmp.Compare orders NaN first,
	// so reversing the operands puts it last.
	slices.SortStableFunc(pairs, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if s.selfRank != nil && len(pairs) > 0 && pairs[0].pos != p {
		self := float64(row[p])
		if pairs[0].score > self {
			s.selfRank(title, self, pairs[0].score)
		}
	}

	k := min(s.limit, len(pairs)-1)
	out := make([]recommendation.Candidate, 0, k)
	for _, sc := range pairs {
		if len(out) == k {
			break
		}
		if sc.pos == p {
			continue
		}
		out = append(out, recommendation.NewCandidate(s.catalog.Title(sc.pos), sc.pos, sc.score))
	}
	return out, nil
}
