package catalog

import (
	"errors"
	"fmt"
)

// Movie is a single catalog entry.
type Movie struct {
	id    int64
	title string
}

// NewMovie creates a movie. id is optional (zero means unknown).
func NewMovie(id int64, title string) Movie {
	return Movie{id: id, title: title}
}

// ID returns the upstream movie identifier, or 0 if unknown.
func (m Movie) ID() int64 { return m.id }

// Title returns the movie title.
func (m Movie) Title() string { return m.title }

// Catalog is an ordered, immutable list of movies indexed by title.
// Title lookup uses first-match semantics: when a title repeats,
// the earliest position wins.
type Catalog struct {
	movies     []Movie
	positions  map[string]int
	duplicates []string
}

// New builds a catalog. The order of movies defines their positions.
func New(movies []Movie) (*Catalog, error) {
	if len(movies) == 0 {
		return nil, errors.New("catalog is empty")
	}

	c := &Catalog{
		movies:    make([]Movie, len(movies)),
		positions: make(map[string]int, len(movies)),
	}
	copy(c.movies, movies)

	seenDup := make(map[string]struct{})
	for i, m := range c.movies {
		if m.title == "" {
			return nil, fmt.Errorf("movie at position %d has an empty title", i)
		}
		if _, ok := c.positions[m.title]; ok {
			if _, reported := seenDup[m.title]; !reported {
				c.duplicates = append(c.duplicates, m.title)
				seenDup[m.title] = struct{}{}
			}
			continue
		}
		c.positions[m.title] = i
	}
	return c, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// Position returns the first position of title.
func (c *Catalog) Position(title string) (int, bool) {
	p, ok := c.positions[title]
	return p, ok
}

// Title returns the title at position i.
func (c *Catalog) Title(i int) string { return c.movies[i].title }

// Movie returns the movie at position i.
func (c *Catalog) Movie(i int) Movie { return c.movies[i] }

// Titles returns all titles in catalog order, including duplicates.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.movies))
	for i, m := range c.movies {
		out[i] = m.title
	}
	return out
}

// Duplicates returns titles that occur more than once, in first-seen order.
func (c *Catalog) Duplicates() []string { return c.duplicates }
