package library

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s, err := NewStore(context.Background(), nil, nil, log)
	require.NoError(t, err)
	return s
}

func addItem(t *testing.T, s *Store, draft ContentDraft) Content {
	t.Helper()
	item, err := s.AddContent(context.Background(), draft)
	require.NoError(t, err)
	return item
}

func intPtr(v int) *int { return &v }

func TestAddContent_Defaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := addItem(t, s, ContentDraft{Title: "Dune", Type: "movie", Platform: "netflix"})
	second := addItem(t, s, ContentDraft{Title: "Chernobyl", Type: "tv"})

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Watched)
	assert.Nil(t, first.Rating)

	_, err := s.AddContent(ctx, ContentDraft{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	items := s.Items()
	assert.Len(t, items, 2)
}

func TestUpdateContent_PartialMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := addItem(t, s, ContentDraft{Title: "Dune", Type: "movie", Genre: []string{"Sci-Fi"}})

	watched := true
	rating := intPtr(5)
	updated, ok := s.UpdateContent(ctx, item.ID, ContentUpdate{
		Watched: &watched,
		Rating:  &rating,
	})
	require.True(t, ok)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "Dune", updated.Title)
	assert.True(t, updated.Watched)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 5, *updated.Rating)

	// explicit nil clears the rating again
	var cleared *int
	updated, ok = s.UpdateContent(ctx, item.ID, ContentUpdate{Rating: &cleared})
	require.True(t, ok)
	assert.Nil(t, updated.Rating)

	_, ok = s.UpdateContent(ctx, "missing", ContentUpdate{Watched: &watched})
	assert.False(t, ok)
}

func TestRemoveContent_CascadesToPlaylists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A"})
	b := addItem(t, s, ContentDraft{Title: "B"})

	pl := s.CreatePlaylist(ctx, "P", "")
	_, err := s.AddToPlaylist(ctx, pl.ID, a.ID)
	require.NoError(t, err)
	_, err = s.AddToPlaylist(ctx, pl.ID, b.ID)
	require.NoError(t, err)

	require.True(t, s.RemoveContent(ctx, b.ID))

	got, ok := s.PlaylistByID(pl.ID)
	require.True(t, ok)
	assert.Equal(t, []string{a.ID}, got.ContentIDs)

	_, found := s.ContentByID(b.ID)
	assert.False(t, found)

	// removing an unknown id is a no-op
	assert.False(t, s.RemoveContent(ctx, "missing"))
}

func TestAddToPlaylist_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A"})
	pl := s.CreatePlaylist(ctx, "P", "")

	_, err := s.AddToPlaylist(ctx, pl.ID, a.ID)
	require.NoError(t, err)
	got, err := s.AddToPlaylist(ctx, pl.ID, a.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{a.ID}, got.ContentIDs)
}

func TestAddToPlaylist_Guards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A"})
	smart := s.CreateSmartPlaylist(ctx, "S", "", []SmartRule{{Field: "type", Operator: OpEquals, Value: "movie"}})

	_, err := s.AddToPlaylist(ctx, "missing", a.ID)
	assert.ErrorIs(t, err, ErrPlaylistNotFound)

	_, err = s.AddToPlaylist(ctx, smart.ID, a.ID)
	assert.ErrorIs(t, err, ErrSmartPlaylist)

	got, ok := s.PlaylistByID(smart.ID)
	require.True(t, ok)
	assert.Empty(t, got.ContentIDs)

	pl := s.CreatePlaylist(ctx, "P", "")
	_, err = s.AddToPlaylist(ctx, pl.ID, "missing")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestRemoveFromPlaylist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A"})
	b := addItem(t, s, ContentDraft{Title: "B"})
	pl := s.CreatePlaylist(ctx, "P", "")
	_, err := s.AddToPlaylist(ctx, pl.ID, a.ID)
	require.NoError(t, err)
	_, err = s.AddToPlaylist(ctx, pl.ID, b.ID)
	require.NoError(t, err)

	got, ok := s.RemoveFromPlaylist(ctx, pl.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, []string{b.ID}, got.ContentIDs)

	// removing an id that is not in the list keeps the list unchanged
	got, ok = s.RemoveFromPlaylist(ctx, pl.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, []string{b.ID}, got.ContentIDs)

	_, ok = s.RemoveFromPlaylist(ctx, "missing", a.ID)
	assert.False(t, ok)
}

func TestUpdatePlaylist_RefreshesUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	pl := s.CreatePlaylist(ctx, "P", "old")
	assert.Equal(t, base, pl.CreatedAt)
	assert.Equal(t, base, pl.UpdatedAt)

	s.now = func() time.Time { return base.Add(time.Hour) }
	desc := "new"
	updated, ok := s.UpdatePlaylist(ctx, pl.ID, PlaylistUpdate{Description: &desc})
	require.True(t, ok)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, base, updated.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), updated.UpdatedAt)

	_, ok = s.UpdatePlaylist(ctx, "missing", PlaylistUpdate{Description: &desc})
	assert.False(t, ok)
}

func TestDeletePlaylist_LeavesCatalogAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A"})
	pl := s.CreatePlaylist(ctx, "P", "")
	_, err := s.AddToPlaylist(ctx, pl.ID, a.ID)
	require.NoError(t, err)

	assert.True(t, s.DeletePlaylist(ctx, pl.ID))
	assert.False(t, s.DeletePlaylist(ctx, pl.ID))

	_, found := s.ContentByID(a.ID)
	assert.True(t, found)
}

func TestSmartPlaylistContent_RatingGreater(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A", Type: "movie"})
	watched := true
	s.UpdateContent(ctx, a.ID, ContentUpdate{Watched: &watched, Rating: ratingPtr(5)})
	b := addItem(t, s, ContentDraft{Title: "B", Type: "tv"})
	s.UpdateContent(ctx, b.ID, ContentUpdate{Rating: ratingPtr(2)})

	pl := s.CreateSmartPlaylist(ctx, "Top rated", "", []SmartRule{
		{Field: "rating", Operator: OpGreater, Value: "3"},
	})

	content := s.SmartPlaylistContent(pl)
	require.Len(t, content, 1)
	assert.Equal(t, a.ID, content[0].ID)
}

func TestSmartPlaylistContent_Pure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addItem(t, s, ContentDraft{Title: "A", Type: "movie"})
	addItem(t, s, ContentDraft{Title: "B", Type: "tv"})

	pl := s.CreateSmartPlaylist(ctx, "Movies", "", []SmartRule{
		{Field: "type", Operator: OpEquals, Value: "movie"},
	})

	first := s.SmartPlaylistContent(pl)
	second := s.SmartPlaylistContent(pl)
	assert.Equal(t, first, second)

	// membership follows the catalog, never a cache
	addItem(t, s, ContentDraft{Title: "C", Type: "movie"})
	assert.Len(t, s.SmartPlaylistContent(pl), 2)
}

func TestSmartPlaylist_ANDSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A", Type: "movie"})
	watched := true
	s.UpdateContent(ctx, a.ID, ContentUpdate{Watched: &watched})
	addItem(t, s, ContentDraft{Title: "B", Type: "movie"})
	addItem(t, s, ContentDraft{Title: "C", Type: "tv"})

	both := []SmartRule{
		{Field: "type", Operator: OpEquals, Value: "movie"},
		{Field: "watched", Operator: OpEquals, Value: "true"},
	}
	pl := s.CreateSmartPlaylist(ctx, "Watched movies", "", both)
	matched := s.SmartPlaylistContent(pl)
	require.Len(t, matched, 1)
	assert.Equal(t, a.ID, matched[0].ID)

	// dropping either rule can only grow the match set
	for i := range both {
		remaining := append([]SmartRule{}, both[:i]...)
		remaining = append(remaining, both[i+1:]...)
		relaxed, ok := s.UpdatePlaylist(ctx, pl.ID, PlaylistUpdate{Rules: &remaining})
		require.True(t, ok)
		assert.GreaterOrEqual(t, len(s.SmartPlaylistContent(relaxed)), len(matched))
	}
}

func TestSmartPlaylistContent_NoRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addItem(t, s, ContentDraft{Title: "A"})
	addItem(t, s, ContentDraft{Title: "B"})

	// a smart playlist without rules selects nothing, not everything
	empty := s.CreateSmartPlaylist(ctx, "Empty", "", nil)
	assert.Empty(t, s.SmartPlaylistContent(empty))

	ruleless := s.CreateSmartPlaylist(ctx, "Ruleless", "", []SmartRule{})
	assert.Empty(t, s.SmartPlaylistContent(ruleless))

	// regular playlists never go through rule evaluation
	regular := s.CreatePlaylist(ctx, "Regular", "")
	assert.Empty(t, s.SmartPlaylistContent(regular))
}

func TestPlaylistContent_SkipsDanglingIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addItem(t, s, ContentDraft{Title: "A"})
	pl := s.CreatePlaylist(ctx, "P", "")
	_, err := s.AddToPlaylist(ctx, pl.ID, a.ID)
	require.NoError(t, err)

	// force a stale reference through direct contentIds surgery
	stale := []string{a.ID, "gone"}
	forced, ok := s.UpdatePlaylist(ctx, pl.ID, PlaylistUpdate{ContentIDs: &stale})
	require.True(t, ok)

	content := s.PlaylistContent(forced)
	require.Len(t, content, 1)
	assert.Equal(t, a.ID, content[0].ID)
}

func ratingPtr(v int) **int {
	p := &v
	return &p
}
