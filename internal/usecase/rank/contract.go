package rank

// CatalogReader resolves titles to catalog positions and back.
type CatalogReader interface {
	Len() int
	Position(title string) (int, bool)
	Title(i int) string
}

// ScoreMatrix exposes rows of the similarity matrix.
type ScoreMatrix interface {
	Size() int
	Row(i int) []float32
}

// SelfRankObserver is notified when a query movie is not the top-scoring
// entry of its own row. Ranking still excludes the query by position.
type SelfRankObserver func(title string, selfScore, topScore float64)
