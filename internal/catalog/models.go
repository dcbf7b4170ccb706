package catalog

// Descriptor is a normalized search/trending result. Its shape is a valid
// content draft for the library: adding one to the catalog store goes
// through unchanged (the store then assigns its own id).
type Descriptor struct {
	ID          string   `json:"id"` // provider identity, "tmdb-<id>"
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Platform    string   `json:"platform"`
	Genre       []string `json:"genre"`
	ReleaseDate string   `json:"releaseDate"`
	Image       string   `json:"image,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	TMDBRating  float64  `json:"tmdbRating,omitempty"`
}

// Media types the catalog provider understands.
const (
	TypeMovie       = "movie"
	TypeTV          = "tv"
	TypeDocumentary = "documentary"
)

func ValidMediaType(t string) bool {
	return t == TypeMovie || t == TypeTV || t == TypeDocumentary
}
