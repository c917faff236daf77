package movierec

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath string
	matrixPath  string
	titles      []string
	rows        [][]float32

	tmdbKey          string
	tmdbToken        string
	tmdbBaseURL      string
	tmdbImageBaseURL string
	lookup           PosterLookup

	driver     string // "valkey" or "redis"
	addrs      []string
	password   string
	standalone bool
	cacheTTL   time.Duration

	limit      int
	workers    int
	ratePerSec float64
	burst      int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithArtifacts loads the catalog JSON and the similarity matrix from disk.
func WithArtifacts(catalogPath, matrixPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = catalogPath
		c.matrixPath = matrixPath
	})
}

// WithData uses an in-memory catalog and similarity matrix.
// rows must be a len(titles) x len(titles) matrix.
func WithData(titles []string, rows [][]float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.titles = titles
		c.rows = rows
	})
}

// WithTMDB resolves posters through The Movie Database with a v3 API key.
func WithTMDB(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tmdbKey = apiKey
	})
}

// WithTMDBToken resolves posters through The Movie Database with a v4 read access token.
func WithTMDBToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tmdbToken = token
	})
}

// WithTMDBEndpoints overrides the TMDB API and image roots.
func WithTMDBEndpoints(baseURL, imageBaseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tmdbBaseURL = baseURL
		c.tmdbImageBaseURL = imageBaseURL
	})
}

// WithPosterLookup sets a custom poster provider. It takes precedence over TMDB.
func WithPosterLookup(l PosterLookup) Option {
	return optionFunc(func(c *clientConfig) {
		c.lookup = l
	})
}

// WithValkey caches poster lookups in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis caches poster lookups in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery for the cache.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithCacheTTL sets how long found posters stay cached. Default: 7 days.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLimit sets how many similar movies are returned. Default: 5.
func WithLimit(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.limit = k
	})
}

// WithWorkers sets how many poster lookups run at once. Default: 5.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithRateLimit caps poster provider requests per second.
func WithRateLimit(perSec float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ratePerSec = perSec
		c.burst = burst
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
