package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SnapshotVersion is the current persisted-state version. Older snapshots
// are migrated on load; newer ones are rejected.
const SnapshotVersion = 1

// Snapshot is the full persisted state: one blob, items plus playlists.
type Snapshot struct {
	Version   int        `json:"version"`
	Items     []Content  `json:"items"`
	Playlists []Playlist `json:"playlists"`
}

// Snapshots persists and restores the state blob. Implementations live in
// internal/state (redis key and JSON file backends).
type Snapshots interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrSmartPlaylist    = errors.New("smart playlists do not take explicit content")
)

// Store is the single source of truth for the library: all content items and
// all playlists. It is an explicit owned state object (no package globals);
// every mutation runs as one critical section, writes the snapshot through
// best-effort, and publishes a best-effort event. In-memory state stays
// authoritative even when the write-through fails.
type Store struct {
	mu        sync.RWMutex
	items     []Content
	playlists []Playlist

	snapshots Snapshots     // optional
	rdb       *redis.Client // optional, mutation events
	log       *logrus.Logger

	now   func() time.Time
	newID func() string
}

// NewStore restores state from snap (when non-nil) and returns a ready
// store. rdb may be nil; events are then skipped.
func NewStore(ctx context.Context, snap Snapshots, rdb *redis.Client, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
	}
	s := &Store{
		snapshots: snap,
		rdb:       rdb,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if snap != nil {
		loaded, ok, err := snap.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if ok {
			s.items = loaded.Items
			s.playlists = loaded.Playlists
			log.WithFields(logrus.Fields{
				"items":     len(s.items),
				"playlists": len(s.playlists),
			}).Info("library state restored")
		}
	}
	return s, nil
}

// Items returns a copy of all content items.
func (s *Store) Items() []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Content, len(s.items))
	for i, it := range s.items {
		out[i] = cloneContent(it)
	}
	return out
}

// Playlists returns a copy of all playlists.
func (s *Store) Playlists() []Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Playlist, len(s.playlists))
	for i, pl := range s.playlists {
		out[i] = clonePlaylist(pl)
	}
	return out
}

func (s *Store) ContentByID(id string) (Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return cloneContent(it), true
		}
	}
	return Content{}, false
}

func (s *Store) PlaylistByID(id string) (Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pl := range s.playlists {
		if pl.ID == id {
			return clonePlaylist(pl), true
		}
	}
	return Playlist{}, false
}

// AddContent appends a new item built from draft. The store owns identity
// and progress state: it generates the id and forces watched=false,
// rating=nil no matter what the caller supplied alongside the draft.
func (s *Store) AddContent(ctx context.Context, draft ContentDraft) (Content, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return Content{}, ErrTitleRequired
	}

	item := Content{
		ID:           s.newID(),
		Title:        draft.Title,
		Type:         draft.Type,
		Platform:     draft.Platform,
		Genre:        cloneStrings(draft.Genre),
		ReleaseDate:  draft.ReleaseDate,
		Watched:      false,
		Rating:       nil,
		Image:        draft.Image,
		Overview:     draft.Overview,
		TMDBRating:   draft.TMDBRating,
		Host:         draft.Host,
		Duration:     draft.Duration,
		YouTubeID:    draft.YouTubeID,
		EpisodeCount: draft.EpisodeCount,
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "content.added", map[string]any{"item": item})
	return cloneContent(item), nil
}

// UpdateContent merges the non-nil fields of upd into the matching item.
// The id itself is immutable and playlists are untouched. Returns false
// when no item has this id; the store treats that as a no-op.
func (s *Store) UpdateContent(ctx context.Context, id string, upd ContentUpdate) (Content, bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Content{}, false
	}

	item := &s.items[idx]
	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.Type != nil {
		item.Type = *upd.Type
	}
	if upd.Platform != nil {
		item.Platform = *upd.Platform
	}
	if upd.Genre != nil {
		item.Genre = cloneStrings(*upd.Genre)
	}
	if upd.ReleaseDate != nil {
		item.ReleaseDate = *upd.ReleaseDate
	}
	if upd.Watched != nil {
		item.Watched = *upd.Watched
	}
	if upd.Rating != nil {
		if *upd.Rating == nil {
			item.Rating = nil
		} else {
			v := **upd.Rating
			item.Rating = &v
		}
	}
	if upd.Image != nil {
		item.Image = *upd.Image
	}
	if upd.Overview != nil {
		item.Overview = *upd.Overview
	}
	if upd.TMDBRating != nil {
		item.TMDBRating = *upd.TMDBRating
	}
	if upd.Host != nil {
		item.Host = *upd.Host
	}
	if upd.Duration != nil {
		item.Duration = *upd.Duration
	}
	if upd.YouTubeID != nil {
		item.YouTubeID = *upd.YouTubeID
	}
	if upd.EpisodeCount != nil {
		item.EpisodeCount = *upd.EpisodeCount
	}

	updated := cloneContent(*item)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "content.updated", map[string]any{"item": updated})
	return updated, true
}

// RemoveContent deletes the item and, in the same state transition, strips
// its id from every playlist's explicit content list so no playlist is left
// with a dangling reference. Removing an unknown id is a no-op.
func (s *Store) RemoveContent(ctx context.Context, id string) bool {
	s.mu.Lock()
	kept := s.items[:0]
	found := false
	for _, it := range s.items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		s.mu.Unlock()
		return false
	}
	s.items = kept

	for i := range s.playlists {
		pl := &s.playlists[i]
		ids := pl.ContentIDs[:0]
		for _, cid := range pl.ContentIDs {
			if cid != id {
				ids = append(ids, cid)
			}
		}
		pl.ContentIDs = ids
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "content.removed", map[string]any{"contentId": id})
	return true
}

// CreatePlaylist creates an empty regular playlist and returns it; callers
// typically need the id right away to start adding content.
func (s *Store) CreatePlaylist(ctx context.Context, name, description string) Playlist {
	now := s.now().UTC()
	pl := Playlist{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		ContentIDs:  []string{},
		Type:        PlaylistRegular,
		Visibility:  visibilityPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.playlists = append(s.playlists, pl)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "playlist.created", map[string]any{"playlist": pl})
	return clonePlaylist(pl)
}

// CreateSmartPlaylist creates a rule-driven playlist. Its content list stays
// empty forever; membership is computed from the rules on every read.
func (s *Store) CreateSmartPlaylist(ctx context.Context, name, description string, rules []SmartRule) Playlist {
	now := s.now().UTC()
	pl := Playlist{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		ContentIDs:  []string{},
		Type:        PlaylistSmart,
		Rules:       cloneRules(rules),
		Visibility:  visibilityPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.playlists = append(s.playlists, pl)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "playlist.created", map[string]any{"playlist": pl})
	return clonePlaylist(pl)
}

// UpdatePlaylist merges the non-nil fields of upd and refreshes UpdatedAt.
// The playlist type is immutable after creation.
func (s *Store) UpdatePlaylist(ctx context.Context, id string, upd PlaylistUpdate) (Playlist, bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Playlist{}, false
	}

	pl := &s.playlists[idx]
	if upd.Name != nil {
		pl.Name = *upd.Name
	}
	if upd.Description != nil {
		pl.Description = *upd.Description
	}
	if upd.Visibility != nil {
		pl.Visibility = *upd.Visibility
	}
	if upd.ContentIDs != nil {
		pl.ContentIDs = cloneStrings(*upd.ContentIDs)
	}
	if upd.Rules != nil {
		pl.Rules = cloneRules(*upd.Rules)
	}
	pl.UpdatedAt = s.now().UTC()

	updated := clonePlaylist(*pl)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "playlist.updated", map[string]any{"playlist": updated})
	return updated, true
}

// DeletePlaylist removes the playlist. The catalog is unaffected; deleting
// an unknown id is a no-op.
func (s *Store) DeletePlaylist(ctx context.Context, id string) bool {
	s.mu.Lock()
	kept := s.playlists[:0]
	found := false
	for _, pl := range s.playlists {
		if pl.ID == id {
			found = true
			continue
		}
		kept = append(kept, pl)
	}
	s.playlists = kept
	if found {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if found {
		s.publishEvent(ctx, "playlist.deleted", map[string]any{"playlistId": id})
	}
	return found
}

// AddToPlaylist appends contentID to a regular playlist. The content list
// keeps set semantics: adding an id that is already present refreshes
// nothing and is reported as success. Only ids that currently exist in the
// catalog can be added.
func (s *Store) AddToPlaylist(ctx context.Context, playlistID, contentID string) (Playlist, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.playlists {
		if s.playlists[i].ID == playlistID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Playlist{}, ErrPlaylistNotFound
	}
	pl := &s.playlists[idx]
	if pl.Type == PlaylistSmart {
		s.mu.Unlock()
		return Playlist{}, ErrSmartPlaylist
	}
	if !s.contentExistsLocked(contentID) {
		s.mu.Unlock()
		return Playlist{}, ErrContentNotFound
	}
	for _, cid := range pl.ContentIDs {
		if cid == contentID {
			out := clonePlaylist(*pl)
			s.mu.Unlock()
			return out, nil
		}
	}
	pl.ContentIDs = append(pl.ContentIDs, contentID)
	pl.UpdatedAt = s.now().UTC()

	updated := clonePlaylist(*pl)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "playlist.item_added", map[string]any{
		"playlistId": playlistID,
		"contentId":  contentID,
	})
	return updated, nil
}

// RemoveFromPlaylist drops contentID from the playlist's content list if
// present and refreshes UpdatedAt.
func (s *Store) RemoveFromPlaylist(ctx context.Context, playlistID, contentID string) (Playlist, bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.playlists {
		if s.playlists[i].ID == playlistID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Playlist{}, false
	}
	pl := &s.playlists[idx]
	ids := pl.ContentIDs[:0]
	for _, cid := range pl.ContentIDs {
		if cid != contentID {
			ids = append(ids, cid)
		}
	}
	pl.ContentIDs = ids
	pl.UpdatedAt = s.now().UTC()

	updated := clonePlaylist(*pl)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publishEvent(ctx, "playlist.item_removed", map[string]any{
		"playlistId": playlistID,
		"contentId":  contentID,
	})
	return updated, true
}

// SmartPlaylistContent computes the membership of a smart playlist against
// the current catalog. It is a pure read: nothing is cached, nothing is
// stored, and two calls with no catalog mutation in between return the same
// result. Non-smart playlists and smart playlists without rules yield an
// empty slice; a ruleless smart playlist deliberately selects nothing
// rather than the whole catalog.
func (s *Store) SmartPlaylistContent(pl Playlist) []Content {
	if pl.Type != PlaylistSmart || len(pl.Rules) == 0 {
		return []Content{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Content{}
	for _, it := range s.items {
		if EvaluateRules(it, pl.Rules) {
			out = append(out, cloneContent(it))
		}
	}
	return out
}

// PlaylistContent resolves a playlist to its items: computed membership for
// smart playlists, id lookup for regular ones. Ids whose item has vanished
// are skipped; the content list is a weak reference, never ownership.
func (s *Store) PlaylistContent(pl Playlist) []Content {
	if pl.Type == PlaylistSmart {
		return s.SmartPlaylistContent(pl)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Content{}
	for _, cid := range pl.ContentIDs {
		for _, it := range s.items {
			if it.ID == cid {
				out = append(out, cloneContent(it))
				break
			}
		}
	}
	return out
}

// snapshotLocked builds the persisted blob. Callers hold s.mu.
func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:   SnapshotVersion,
		Items:     make([]Content, len(s.items)),
		Playlists: make([]Playlist, len(s.playlists)),
	}
	for i, it := range s.items {
		snap.Items[i] = cloneContent(it)
	}
	for i, pl := range s.playlists {
		snap.Playlists[i] = clonePlaylist(pl)
	}
	return snap
}

// persistLocked writes the current state through to the snapshot backend.
// Failures are logged and swallowed: the in-memory state remains
// authoritative for the session. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, s.snapshotLocked()); err != nil {
		s.log.WithError(err).Warn("state write-through failed")
	}
}

// publishEvent notifies listeners about a mutation, best-effort.
func (s *Store) publishEvent(ctx context.Context, eventType string, payload map[string]any) {
	if s.rdb == nil {
		return
	}
	event := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.WithError(err).Warn("marshal event")
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		s.log.WithError(err).WithField("event", eventType).Warn("publish event")
	}
}

func (s *Store) contentExistsLocked(id string) bool {
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func cloneContent(it Content) Content {
	out := it
	out.Genre = cloneStrings(it.Genre)
	if it.Rating != nil {
		v := *it.Rating
		out.Rating = &v
	}
	return out
}

func clonePlaylist(pl Playlist) Playlist {
	out := pl
	out.ContentIDs = cloneStrings(pl.ContentIDs)
	out.Rules = cloneRules(pl.Rules)
	return out
}

func cloneRules(in []SmartRule) []SmartRule {
	if in == nil {
		return nil
	}
	out := make([]SmartRule, len(in))
	copy(out, in)
	return out
}

// cloneStrings always returns a non-nil slice so the persisted JSON carries
// [] rather than null for empty lists.
func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
