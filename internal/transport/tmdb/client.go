package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/metrics"
)

const (
	providerName = "tmdb"

	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL serves w500 poster renditions.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Config holds the TMDB client settings.
// Either APIKey (v3 key) or AccessToken (v4 bearer token) must be set.
type Config struct {
	APIKey       string
	AccessToken  string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client resolves movie titles to poster URLs through the TMDB search API.
type Client struct {
	apiKey       string
	accessToken  string
	baseURL      string
	imageBaseURL string
	http         *http.Client
	logger       *zap.Logger
}

// NewClient creates a TMDB poster provider.
func NewClient(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	imageBaseURL := strings.TrimRight(cfg.ImageBaseURL, "/")
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	lg := cfg.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Client{
		apiKey:       cfg.APIKey,
		accessToken:  cfg.AccessToken,
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		http:         hc,
		logger:       lg,
	}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

type apiError struct {
	StatusMessage string `json:"status_message"`
}

// Lookup implements domain.PosterLookup.
// An exact (case-insensitive) title match wins over the first result with a poster.
func (c *Client) Lookup(ctx context.Context, title string) (string, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("include_adult", "false")

	start := time.Now()
	var resp searchResponse
	err := c.get(ctx, "/search/movie", q, &resp)
	metrics.PosterRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PosterRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return "", err
	}

	path := pickPoster(title, resp.Results)
	if path == "" {
		metrics.PosterRequestsTotal.WithLabelValues(providerName, "not_found").Inc()
		return "", fmt.Errorf("tmdb %q: %w", title, domain.ErrPosterNotFound)
	}

	metrics.PosterRequestsTotal.WithLabelValues(providerName, "success").Inc()
	return c.imageBaseURL + "/" + strings.TrimLeft(path, "/"), nil
}

// HealthCheck verifies API availability and credentials via /configuration.
func (c *Client) HealthCheck(ctx context.Context) error {
	var out map[string]any
	if err := c.get(ctx, "/configuration", nil, &out); err != nil {
		return fmt.Errorf("tmdb configuration: %w", err)
	}
	return nil
}

func pickPoster(title string, results []searchResult) string {
	first := ""
	for _, r := range results {
		if r.PosterPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(r.Title), strings.TrimSpace(title)) {
			return r.PosterPath
		}
		if first == "" {
			first = r.PosterPath
		}
	}
	return first
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("tmdb request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("tmdb request: %w: %w", domain.ErrPosterProviderError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read tmdb response: %w: %w", domain.ErrPosterProviderError, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode tmdb response: %w: %w", domain.ErrPosterProviderError, err)
	}
	return nil
}

// parseAPIError extracts status_message from a TMDB error body.
// All errors wrap domain.ErrPosterProviderError.
func parseAPIError(status int, body []byte) error {
	var parsed apiError
	if json.Unmarshal(body, &parsed) == nil && parsed.StatusMessage != "" {
		return fmt.Errorf("tmdb API error %d: %s: %w", status, parsed.StatusMessage, domain.ErrPosterProviderError)
	}
	return fmt.Errorf("tmdb API error %d: %w", status, domain.ErrPosterProviderError)
}
