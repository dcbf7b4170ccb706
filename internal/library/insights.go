package library

import "math"

// PlaylistInsights are the derived aggregates for one playlist, computed
// against the live catalog (smart playlists aggregate their computed
// membership).
type PlaylistInsights struct {
	TotalItems           int            `json:"totalItems"`
	AverageRating        float64        `json:"averageRating"`
	WatchedPercentage    float64        `json:"watchedPercentage"`
	GenreDistribution    map[string]int `json:"genreDistribution"`
	PlatformDistribution map[string]int `json:"platformDistribution"`
	TypeDistribution     map[string]int `json:"typeDistribution"`
}

// LibraryInsights are the dashboard aggregates over the whole catalog.
// Distributions are percentages; Trend compares the watched share of the
// five most recently added items against the overall share.
type LibraryInsights struct {
	TotalItems           int                `json:"totalItems"`
	WatchedCount         int                `json:"watchedCount"`
	WatchedPercentage    float64            `json:"watchedPercentage"`
	Trend                string             `json:"trend"` // "up" | "down" | "stable"
	RatedCount           int                `json:"ratedCount"`
	AverageRating        float64            `json:"averageRating"`
	GenreDistribution    map[string]float64 `json:"genreDistribution"`
	PlatformDistribution map[string]float64 `json:"platformDistribution"`
}

// PlaylistInsights computes the aggregates for the playlist with this id.
func (s *Store) PlaylistInsights(id string) (PlaylistInsights, bool) {
	pl, ok := s.PlaylistByID(id)
	if !ok {
		return PlaylistInsights{}, false
	}

	ins := PlaylistInsights{
		GenreDistribution:    map[string]int{},
		PlatformDistribution: map[string]int{},
		TypeDistribution:     map[string]int{},
	}

	items := s.PlaylistContent(pl)
	ins.TotalItems = len(items)
	if len(items) == 0 {
		return ins, true
	}

	watched := 0
	rated := 0
	ratingSum := 0
	for _, it := range items {
		if it.Watched {
			watched++
		}
		if it.Rating != nil {
			rated++
			ratingSum += *it.Rating
		}
		for _, g := range it.Genre {
			ins.GenreDistribution[g]++
		}
		if it.Platform != "" {
			ins.PlatformDistribution[it.Platform]++
		}
		if it.Type != "" {
			ins.TypeDistribution[it.Type]++
		}
	}
	ins.WatchedPercentage = round1(float64(watched) / float64(len(items)) * 100)
	if rated > 0 {
		ins.AverageRating = round1(float64(ratingSum) / float64(rated))
	}
	return ins, true
}

// LibraryInsights computes the dashboard aggregates for the whole catalog.
func (s *Store) LibraryInsights() LibraryInsights {
	items := s.Items()

	ins := LibraryInsights{
		Trend:                "stable",
		GenreDistribution:    map[string]float64{},
		PlatformDistribution: map[string]float64{},
	}
	ins.TotalItems = len(items)
	if len(items) == 0 {
		return ins
	}

	genreCounts := map[string]int{}
	genreTotal := 0
	platformCounts := map[string]int{}
	platformTotal := 0
	ratingSum := 0
	for _, it := range items {
		if it.Watched {
			ins.WatchedCount++
		}
		if it.Rating != nil {
			ins.RatedCount++
			ratingSum += *it.Rating
		}
		for _, g := range it.Genre {
			genreCounts[g]++
			genreTotal++
		}
		if it.Platform != "" {
			platformCounts[it.Platform]++
			platformTotal++
		}
	}

	ins.WatchedPercentage = round1(float64(ins.WatchedCount) / float64(len(items)) * 100)
	if ins.RatedCount > 0 {
		ins.AverageRating = round1(float64(ratingSum) / float64(ins.RatedCount))
	}
	for g, n := range genreCounts {
		ins.GenreDistribution[g] = round1(float64(n) / float64(genreTotal) * 100)
	}
	for p, n := range platformCounts {
		ins.PlatformDistribution[p] = round1(float64(n) / float64(platformTotal) * 100)
	}

	// Trend: watched share of the five most recently added items versus the
	// overall share.
	recent := items
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	recentWatched := 0
	for _, it := range recent {
		if it.Watched {
			recentWatched++
		}
	}
	recentPct := float64(recentWatched) / float64(len(recent)) * 100
	switch {
	case recentPct > ins.WatchedPercentage:
		ins.Trend = "up"
	case recentPct < ins.WatchedPercentage:
		ins.Trend = "down"
	}
	return ins
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
