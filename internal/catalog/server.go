package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Provider is the catalog-search contract the handlers depend on.
type Provider interface {
	Search(ctx context.Context, query, mediaType string) ([]Descriptor, error)
	Trending(ctx context.Context, mediaType string, page int) ([]Descriptor, error)
}

type Server struct {
	provider Provider
	log      *logrus.Logger
}

func NewServer(provider Provider, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{provider: provider, log: log}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Get("/search", s.handleSearch)
	r.Get("/trending", s.handleTrending)
	return r
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > 200 {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		mediaType = TypeMovie
	}
	if !ValidMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, `invalid type (must be "movie", "tv" or "documentary")`)
		return
	}

	items, err := s.provider.Search(r.Context(), query, mediaType)
	if err != nil {
		s.log.WithError(err).Warn("catalog search failed")
		writeError(w, http.StatusBadGateway, "failed to query catalog provider")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		mediaType = TypeMovie
	}
	if !ValidMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, `invalid type (must be "movie", "tv" or "documentary")`)
		return
	}
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 && v <= 500 {
			page = v
		}
	}

	items, err := s.provider.Trending(r.Context(), mediaType, page)
	if err != nil {
		s.log.WithError(err).Warn("catalog trending failed")
		writeError(w, http.StatusBadGateway, "failed to query catalog provider")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}
