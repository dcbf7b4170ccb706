package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Server exposes the store over HTTP. This is the complete presentation
// contract of the core: content CRUD, playlist CRUD, membership edits and
// the computed reads (smart content, insights).
type Server struct {
	store *Store
	log   *logrus.Logger
}

func NewServer(store *Store, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	return &Server{store: store, log: log}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/library", s.handleLibrary)

	r.Get("/content", s.handleListContent)
	r.Post("/content", s.handleAddContent)
	r.Patch("/content/{id}", s.handleUpdateContent)
	r.Delete("/content/{id}", s.handleRemoveContent)

	r.Get("/playlists", s.handleListPlaylists)
	r.Post("/playlists", s.handleCreatePlaylist)
	r.Post("/playlists/smart", s.handleCreateSmartPlaylist)
	r.Get("/playlists/{id}", s.handleGetPlaylist)
	r.Patch("/playlists/{id}", s.handlePatchPlaylist)
	r.Delete("/playlists/{id}", s.handleDeletePlaylist)

	r.Post("/playlists/{id}/content", s.handleAddToPlaylist)
	r.Delete("/playlists/{id}/content/{contentId}", s.handleRemoveFromPlaylist)

	r.Get("/playlists/{id}/insights", s.handlePlaylistInsights)
	r.Get("/insights", s.handleLibraryInsights)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "watchroom",
	})
}

// handleLibrary returns the full state in the persisted blob shape.
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items":     s.store.Items(),
		"playlists": s.store.Playlists(),
	})
}
