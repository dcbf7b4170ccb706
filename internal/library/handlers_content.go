package library

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.store.Items(),
	})
}

// handleAddContent accepts a content draft, typically a descriptor straight
// from the catalog or video search. Identity and progress fields in the body
// are ignored; the store owns those.
func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request) {
	var draft ContentDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.store.AddContent(r.Context(), draft)
	if errors.Is(err, ErrTitleRequired) {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err != nil {
		s.log.WithError(err).Error("add content")
		writeError(w, http.StatusInternalServerError, "failed to add content")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// contentPatch mirrors ContentUpdate but keeps rating raw so that an
// explicit null (clear the rating) can be told apart from an absent key.
type contentPatch struct {
	Title        *string         `json:"title"`
	Type         *string         `json:"type"`
	Platform     *string         `json:"platform"`
	Genre        *[]string       `json:"genre"`
	ReleaseDate  *string         `json:"releaseDate"`
	Watched      *bool           `json:"watched"`
	Rating       json.RawMessage `json:"rating"`
	Image        *string         `json:"image"`
	Overview     *string         `json:"overview"`
	TMDBRating   *float64        `json:"tmdbRating"`
	Host         *string         `json:"host"`
	Duration     *string         `json:"duration"`
	YouTubeID    *string         `json:"youtubeId"`
	EpisodeCount *int            `json:"episodeCount"`
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body contentPatch
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := ContentUpdate{
		Title:        body.Title,
		Type:         body.Type,
		Platform:     body.Platform,
		Genre:        body.Genre,
		ReleaseDate:  body.ReleaseDate,
		Watched:      body.Watched,
		Image:        body.Image,
		Overview:     body.Overview,
		TMDBRating:   body.TMDBRating,
		Host:         body.Host,
		Duration:     body.Duration,
		YouTubeID:    body.YouTubeID,
		EpisodeCount: body.EpisodeCount,
	}
	if len(body.Rating) > 0 {
		var rating *int
		if err := json.Unmarshal(body.Rating, &rating); err != nil {
			writeError(w, http.StatusBadRequest, "rating must be a number or null")
			return
		}
		if rating != nil && (*rating < 1 || *rating > 5) {
			writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
			return
		}
		upd.Rating = &rating
	}

	item, ok := s.store.UpdateContent(r.Context(), id, upd)
	if !ok {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleRemoveContent is idempotent: removing an id that is already gone
// still answers 204.
func (s *Server) handleRemoveContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.RemoveContent(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLibraryInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.LibraryInsights())
}
