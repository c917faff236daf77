package chi

// ErrorCode is a machine-readable error identifier in JSON error bodies.
type ErrorCode string

// Error codes returned by the JSON API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeTitleNotFound    ErrorCode = "title_not_found"
	ErrorCodeProviderError    ErrorCode = "poster_provider_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
	ErrorCodeServiceUnhealthy ErrorCode = "service_unhealthy"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MovieItem is one catalog entry.
type MovieItem struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// MovieListResponse is a cursor-paginated page of catalog titles.
type MovieListResponse struct {
	Items      []MovieItem `json:"items"`
	Total      int         `json:"total"`
	HasMore    bool        `json:"has_more"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

// RecommendationItem is one ranked recommendation.
// PosterURL is the placeholder when no poster was found.
// Score is null when the matrix holds NaN or Inf for the pair.
type RecommendationItem struct {
	Rank        int      `json:"rank"`
	Title       string   `json:"title"`
	Score       *float64 `json:"score"`
	PosterURL   string   `json:"poster_url"`
	PosterFound bool     `json:"poster_found"`
}

// RecommendationResponse answers GET /api/v1/recommendations.
type RecommendationResponse struct {
	Query string               `json:"query"`
	Items []RecommendationItem `json:"items"`
}

// HealthResponse is the aggregated health body.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}
