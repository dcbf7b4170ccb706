package library

import (
	"time"
)

// Content is a single trackable unit of media in the user's library:
// a movie, a TV show, a documentary or a podcast-style video.
type Content struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`     // "movie" | "tv" | "documentary" | "podcast"
	Platform    string   `json:"platform"` // streaming service tag; "youtube" marks video content
	Genre       []string `json:"genre"`
	ReleaseDate string   `json:"releaseDate"`
	Watched     bool     `json:"watched"`
	Rating      *int     `json:"rating"` // 1..5, nil when unrated

	// Presentation-only fields, stored as given.
	Image        string  `json:"image,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	TMDBRating   float64 `json:"tmdbRating,omitempty"`
	Host         string  `json:"host,omitempty"`
	Duration     string  `json:"duration,omitempty"`
	YouTubeID    string  `json:"youtubeId,omitempty"`
	EpisodeCount int     `json:"episodeCount,omitempty"`
}

// ContentDraft carries everything a caller may supply when adding content.
// ID, Watched and Rating are owned by the store and cannot be set here.
type ContentDraft struct {
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Platform     string   `json:"platform"`
	Genre        []string `json:"genre"`
	ReleaseDate  string   `json:"releaseDate"`
	Image        string   `json:"image,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	TMDBRating   float64  `json:"tmdbRating,omitempty"`
	Host         string   `json:"host,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	YouTubeID    string   `json:"youtubeId,omitempty"`
	EpisodeCount int      `json:"episodeCount,omitempty"`
}

// ContentUpdate is a partial update; nil fields are left untouched.
type ContentUpdate struct {
	Title        *string   `json:"title"`
	Type         *string   `json:"type"`
	Platform     *string   `json:"platform"`
	Genre        *[]string `json:"genre"`
	ReleaseDate  *string   `json:"releaseDate"`
	Watched      *bool     `json:"watched"`
	Rating       **int     `json:"-"`
	Image        *string   `json:"image"`
	Overview     *string   `json:"overview"`
	TMDBRating   *float64  `json:"tmdbRating"`
	Host         *string   `json:"host"`
	Duration     *string   `json:"duration"`
	YouTubeID    *string   `json:"youtubeId"`
	EpisodeCount *int      `json:"episodeCount"`
}

// Playlist groups content either by an explicit id list (regular) or by a
// rule set evaluated on demand (smart). ContentIDs is meaningful only for
// regular playlists; smart membership is computed, never stored.
type Playlist struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ContentIDs  []string    `json:"contentIds"`
	Type        string      `json:"type"` // "regular" | "smart"
	Rules       []SmartRule `json:"rules,omitempty"`
	Visibility  string      `json:"visibility"` // "private" | "public" | "shared"
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// SmartRule is one field/operator/value predicate of a smart playlist.
// Value is always a string; numeric operators parse it as a number.
type SmartRule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"` // "equals" | "contains" | "greater" | "less"
	Value    string `json:"value"`
}

// PlaylistUpdate is a partial update; nil fields are left untouched.
type PlaylistUpdate struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Visibility  *string      `json:"visibility"`
	ContentIDs  *[]string    `json:"contentIds"`
	Rules       *[]SmartRule `json:"rules"`
}

const (
	PlaylistRegular = "regular"
	PlaylistSmart   = "smart"

	visibilityPrivate = "private"
	visibilityPublic  = "public"
	visibilityShared  = "shared"
)
