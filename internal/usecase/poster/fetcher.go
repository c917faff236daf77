package poster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain"
	domposter "github.com/kailas-cloud/movierec/internal/domain/poster"
)

// DefaultWorkers is the maximum number of lookups in flight per Fetch call.
const DefaultWorkers = 5

// Fetcher resolves posters for a set of titles with a bounded worker pool.
// A failed lookup only affects its own title.
type Fetcher struct {
	lookup   domain.PosterLookup
	workers  int
	outcomes *prometheus.CounterVec
	logger   *zap.Logger
}

// NewFetcher creates a fetcher over the given lookup.
func NewFetcher(lookup domain.PosterLookup, logger *zap.Logger) *Fetcher {
	return &Fetcher{lookup: lookup, workers: DefaultWorkers, logger: logger}
}

// WithWorkers overrides the pool size (values <= 0 are ignored).
func (f *Fetcher) WithWorkers(n int) *Fetcher {
	if n > 0 {
		f.workers = n
	}
	return f
}

// WithOutcomeCounter records each lookup under label "outcome".
func (f *Fetcher) WithOutcomeCounter(c *prometheus.CounterVec) *Fetcher {
	f.outcomes = c
	return f
}

// Workers returns the configured pool size.
func (f *Fetcher) Workers() int { return f.workers }

// outcome is the result of one lookup. err != nil is the failure branch.
type outcome struct {
	title string
	url   string
	err   error
}

// Fetch looks up every distinct title and blocks until all lookups finish.
// Titles whose lookup fails map to a missing poster. The returned map is
// owned by the caller; an empty input yields an empty map and no lookups.
func (f *Fetcher) Fetch(ctx context.Context, titles []string) map[string]domposter.Poster {
	unique := dedupe(titles)
	out := make(map[string]domposter.Poster, len(unique))
	if len(unique) == 0 {
		return out
	}

	jobs := make(chan string)
	results := make(chan outcome, len(unique))

	var wg sync.WaitGroup
	for range min(f.workers, len(unique)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for title := range jobs {
				results <- f.resolve(ctx, title)
			}
		}()
	}

	for _, title := range unique {
		jobs <- title
	}
	close(jobs)
	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			out[res.title] = domposter.Missing()
			continue
		}
		out[res.title] = domposter.Found(res.url)
	}
	return out
}

// resolve runs a single lookup, converting errors, empty URLs and panics
// into the failure branch.
func (f *Fetcher) resolve(ctx context.Context, title string) (res outcome) {
	res.title = title
	defer func() {
		if rvr := recover(); rvr != nil {
			f.logger.Error("Poster lookup panicked",
				zap.String("title", title),
				zap.Any("panic", rvr),
			)
			f.inc("panic")
			res.url = ""
			res.err = fmt.Errorf("lookup panic: %v", rvr)
		}
	}()

	url, err := f.lookup.Lookup(ctx, title)
	switch {
	case err == nil && url != "":
		f.inc("found")
		res.url = url
	case err == nil, errors.Is(err, domain.ErrPosterNotFound):
		f.inc("missing")
		res.err = domain.ErrPosterNotFound
	default:
		f.inc("error")
		f.logger.Warn("Poster lookup failed", zap.String("title", title), zap.Error(err))
		res.err = err
	}
	return res
}

func (f *Fetcher) inc(label string) {
	if f.outcomes != nil {
		f.outcomes.WithLabelValues(label).Inc()
	}
}

func dedupe(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
