package library

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": s.store.Playlists(),
	})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}
	if len(body.Description) > 1000 {
		writeError(w, http.StatusBadRequest, "description is too long")
		return
	}

	pl := s.store.CreatePlaylist(r.Context(), body.Name, body.Description)
	writeJSON(w, http.StatusCreated, pl)
}

func (s *Server) handleCreateSmartPlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Rules       []SmartRule `json:"rules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}
	if len(body.Description) > 1000 {
		writeError(w, http.StatusBadRequest, "description is too long")
		return
	}
	for _, rule := range body.Rules {
		switch rule.Operator {
		case OpEquals, OpContains, OpGreater, OpLess:
		default:
			writeError(w, http.StatusBadRequest, `invalid operator (must be "equals", "contains", "greater" or "less")`)
			return
		}
	}

	pl := s.store.CreateSmartPlaylist(r.Context(), body.Name, body.Description, body.Rules)
	writeJSON(w, http.StatusCreated, pl)
}

// handleGetPlaylist returns the playlist together with its resolved content:
// the id lookups for a regular playlist, the computed membership for a smart
// one.
func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pl, ok := s.store.PlaylistByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": pl,
		"content":  s.store.PlaylistContent(pl),
	})
}

func (s *Server) handlePatchPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body PlaylistUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" || len(name) > 200 {
			writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
			return
		}
		body.Name = &name
	}
	if body.Description != nil && len(*body.Description) > 1000 {
		writeError(w, http.StatusBadRequest, "description is too long")
		return
	}
	if body.Visibility != nil {
		switch *body.Visibility {
		case visibilityPrivate, visibilityPublic, visibilityShared:
		default:
			writeError(w, http.StatusBadRequest, `invalid visibility (must be "private", "public" or "shared")`)
			return
		}
	}

	pl, ok := s.store.UpdatePlaylist(r.Context(), id, body)
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

// handleDeletePlaylist is idempotent like content removal.
func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.DeletePlaylist(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddToPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		ContentID string `json:"contentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ContentID == "" {
		writeError(w, http.StatusBadRequest, "contentId is required")
		return
	}

	pl, err := s.store.AddToPlaylist(r.Context(), id, body.ContentID)
	switch {
	case errors.Is(err, ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	case errors.Is(err, ErrSmartPlaylist):
		writeError(w, http.StatusConflict, "cannot add content to a smart playlist")
		return
	case errors.Is(err, ErrContentNotFound):
		writeError(w, http.StatusNotFound, "content not found")
		return
	case err != nil:
		s.log.WithError(err).Error("add to playlist")
		writeError(w, http.StatusInternalServerError, "failed to update playlist")
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleRemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	contentID := chi.URLParam(r, "contentId")

	pl, ok := s.store.RemoveFromPlaylist(r.Context(), id, contentID)
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handlePlaylistInsights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ins, ok := s.store.PlaylistInsights(id)
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	writeJSON(w, http.StatusOK, ins)
}
