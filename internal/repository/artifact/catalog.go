// Package artifact reads the precomputed catalog and similarity matrix files.
package artifact

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/domain/catalog"
)

type movieRecord struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
}

// columnCatalog is the column-oriented layout written by dataframe exports:
// {"movie_id": {"0": 19995}, "title": {"0": "Avatar"}}.
type columnCatalog struct {
	MovieID map[string]int64  `json:"movie_id"`
	Title   map[string]string `json:"title"`
}

// ReadCatalog loads a catalog JSON file.
func ReadCatalog(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes either a list of records or a column-oriented object.
func ParseCatalog(data []byte) (*catalog.Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty catalog file", domain.ErrInvalidArtifact)
	}

	var movies []catalog.Movie
	var err error
	switch trimmed[0] {
	case '[':
		movies, err = parseRecords(trimmed)
	case '{':
		movies, err = parseColumns(trimmed)
	default:
		return nil, fmt.Errorf("%w: catalog must be a JSON array or object", domain.ErrInvalidArtifact)
	}
	if err != nil {
		return nil, err
	}

	c, err := catalog.New(movies)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArtifact, err)
	}
	return c, nil
}

func parseRecords(data []byte) ([]catalog.Movie, error) {
	var records []movieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode records: %w", domain.ErrInvalidArtifact, err)
	}
	movies := make([]catalog.Movie, len(records))
	for i, r := range records {
		movies[i] = catalog.NewMovie(r.MovieID, r.Title)
	}
	return movies, nil
}

func parseColumns(data []byte) ([]catalog.Movie, error) {
	var cols columnCatalog
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("%w: decode columns: %w", domain.ErrInvalidArtifact, err)
	}
	if len(cols.Title) == 0 {
		return nil, fmt.Errorf("%w: catalog has no title column", domain.ErrInvalidArtifact)
	}

	type indexed struct {
		idx int
		key string
	}
	keys := make([]indexed, 0, len(cols.Title))
	for k := range cols.Title {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: row index %q is not an integer", domain.ErrInvalidArtifact, k)
		}
		keys = append(keys, indexed{idx: idx, key: k})
	}
	slices.SortFunc(keys, func(a, b indexed) int { return a.idx - b.idx })

	movies := make([]catalog.Movie, len(keys))
	for i, k := range keys {
		movies[i] = catalog.NewMovie(cols.MovieID[k.key], cols.Title[k.key])
	}
	return movies, nil
}
