package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPosterMetrics()
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, h http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	cfg.ImageBaseURL = "https://img.test/w500"
	return NewClient(&cfg)
}

func TestClient_Lookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "Heat" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "k" {
			t.Errorf("api_key = %q", got)
		}
		_, _ = w.Write([]byte(`{"results":[
			{"id":1,"title":"Heat Wave","poster_path":"/wave.jpg"},
			{"id":2,"title":"heat","poster_path":"/heat.jpg"}
		]}`))
	}, Config{APIKey: "k"})

	u, err := c.Lookup(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "https://img.test/w500/heat.jpg" {
		t.Errorf("url = %q, want exact title match", u)
	}
}

func TestClient_Lookup_FallsBackToFirstPoster(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"id":1,"title":"Other","poster_path":""},
			{"id":2,"title":"Another","poster_path":"/another.jpg"}
		]}`))
	}, Config{})

	u, err := c.Lookup(context.Background(), "Nothing Matches")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "https://img.test/w500/another.jpg" {
		t.Errorf("url = %q", u)
	}
}

func TestClient_Lookup_BearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Has("api_key") {
			t.Error("api_key must not be sent with a bearer token")
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"X","poster_path":"/x.jpg"}]}`))
	}, Config{AccessToken: "tok"})

	if _, err := c.Lookup(context.Background(), "X"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Lookup_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}, Config{})

	_, err := c.Lookup(context.Background(), "Missing")
	if !errors.Is(err, domain.ErrPosterNotFound) {
		t.Errorf("expected ErrPosterNotFound, got %v", err)
	}
}

func TestClient_Lookup_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	}, Config{APIKey: "bad"})

	_, err := c.Lookup(context.Background(), "X")
	if !errors.Is(err, domain.ErrPosterProviderError) {
		t.Fatalf("expected ErrPosterProviderError, got %v", err)
	}
	if got := err.Error(); got != "tmdb API error 401: Invalid API key: poster provider error" {
		t.Errorf("error = %q", got)
	}
}

func TestClient_Lookup_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":`))
	}, Config{})

	if _, err := c.Lookup(context.Background(), "X"); !errors.Is(err, domain.ErrPosterProviderError) {
		t.Errorf("expected ErrPosterProviderError, got %v", err)
	}
}

func TestClient_Lookup_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(&Config{BaseURL: srv.URL})

	if _, err := c.Lookup(context.Background(), "X"); !errors.Is(err, domain.ErrPosterProviderError) {
		t.Errorf("expected ErrPosterProviderError, got %v", err)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"images":{"base_url":"http://image.tmdb.org/t/p/"}}`))
	}, Config{})

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_HealthCheck_Unavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Config{})

	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("expected error")
	}
}
