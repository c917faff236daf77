package chi

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain"
	logpkg "github.com/kailas-cloud/movierec/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type posterCard struct {
	Title     string
	PosterURL string
	Found     bool
}

type pageData struct {
	Titles   []string
	Selected string
	Cards    []posterCard
	Message  string
}

// Index handles GET /: the title selector and, with ?title=, the recommendation cards.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Titles:   s.recommender.Titles(),
		Selected: r.URL.Query().Get("title"),
	}
	status := http.StatusOK

	if data.Selected != "" {
		recs, err := s.recommender.Recommend(r.Context(), data.Selected)
		switch {
		case errors.Is(err, domain.ErrTitleNotFound):
			status = http.StatusNotFound
			data.Message = "Movie not found in the catalog. Please pick a title from the list."
		case err != nil:
			logpkg.FromContext(r.Context()).Error("recommend failed", zap.Error(err))
			status = http.StatusInternalServerError
			data.Message = "Something went wrong while computing recommendations."
		default:
			data.Cards = make([]posterCard, len(recs))
			for i, rec := range recs {
				data.Cards[i] = posterCard{
					Title:     rec.Title(),
					PosterURL: rec.Poster().Or(s.opts.PlaceholderURL),
					Found:     rec.Poster().IsFound(),
				}
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		logpkg.FromContext(r.Context()).Warn("render page", zap.Error(err))
	}
}
