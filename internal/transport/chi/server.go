package chi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/domain/poster"
	"github.com/kailas-cloud/movierec/internal/domain/recommendation"
	logpkg "github.com/kailas-cloud/movierec/internal/logger"
	healthuc "github.com/kailas-cloud/movierec/internal/usecase/health"
	"github.com/kailas-cloud/movierec/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Recommender is the recommendation use case as seen by HTTP handlers.
type Recommender interface {
	Recommend(ctx context.Context, title string) ([]recommendation.Recommendation, error)
	Titles() []string
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// Options holds presentation settings.
type Options struct {
	PlaceholderURL  string
	DefaultPageSize int
	MaxPageSize     int
}

// Server serves the recommendation page and the JSON API.
type Server struct {
	recommender   Recommender
	health        HealthReporter
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server.
func NewServer(recommender Recommender, health HealthReporter, opts Options, logger *zap.Logger) *Server {
	if opts.PlaceholderURL == "" {
		opts.PlaceholderURL = poster.DefaultPlaceholder
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 50
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 500
	}
	s := &Server{
		recommender: recommender,
		health:      health,
		opts:        opts,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTitleNotFound, http.StatusNotFound, ErrorCodeTitleNotFound),
		sentinelHandler(domain.ErrPosterProviderError, http.StatusBadGateway, ErrorCodeProviderError),
	}
	return s
}

// ListMovies handles GET /api/v1/movies.
func (s *Server) ListMovies(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, s.opts.MaxPageSize)
	}

	resp, err := paginateMovies(s.recommender.Titles(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// paginateMovies pages titles by catalog position; the cursor is the last position returned.
func paginateMovies(titles []string, cursor string, limit int) (MovieListResponse, error) {
	startIdx := 0
	if cursor != "" {
		pos, err := strconv.Atoi(cursor)
		if err != nil || pos < 0 {
			return MovieListResponse{}, errors.New("invalid cursor")
		}
		startIdx = pos + 1
	}

	if startIdx > len(titles) {
		startIdx = len(titles)
	}
	end := min(startIdx+limit, len(titles))

	page := make([]MovieItem, 0, end-startIdx)
	for i := startIdx; i < end; i++ {
		page = append(page, MovieItem{Title: titles[i], Position: i})
	}
	hasMore := end < len(titles)

	resp := MovieListResponse{
		Items:   page,
		Total:   len(titles),
		HasMore: hasMore,
	}
	if hasMore && len(page) > 0 {
		c := strconv.Itoa(page[len(page)-1].Position)
		resp.NextCursor = &c
	}
	return resp, nil
}

// GetRecommendations handles GET /api/v1/recommendations?title=.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "title is required")
		return
	}

	recs, err := s.recommender.Recommend(r.Context(), title)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]RecommendationItem, len(recs))
	for i, rec := range recs {
		items[i] = RecommendationItem{
			Rank:        i + 1,
			Title:       rec.Title(),
			Score:       finiteScore(rec.Score()),
			PosterURL:   rec.Poster().Or(s.opts.PlaceholderURL),
			PosterFound: rec.Poster().IsFound(),
		}
	}
	writeJSON(w, http.StatusOK, RecommendationResponse{Query: title, Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// writeJSON encodes before touching the response so an encode failure
// still yields a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"code":"internal_error","message":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func finiteScore(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
func safeDomainMessage(err error) string {
	var tnf *domain.TitleNotFoundError
	if errors.As(err, &tnf) {
		return tnf.Error()
	}
	for _, s := range []error{domain.ErrTitleNotFound, domain.ErrPosterProviderError} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Info("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
