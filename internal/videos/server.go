package videos

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Provider is the video-search contract the handlers depend on.
type Provider interface {
	Search(ctx context.Context, query string) ([]Descriptor, error)
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

	items, err := s.provider.Search(r.Context(), query)
	if err != nil {
		s.log.WithError(err).Warn("video search failed")
		writeError(w, http.StatusBadGateway, "failed to query video provider")
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
