// Package state persists the library snapshot blob: one versioned JSON
// document holding all items and playlists, stored either under a redis key
// or in a local file.
package state

import (
	"encoding/json"
	"fmt"

	"watchroom/internal/library"
)

// Decode parses a snapshot blob and migrates it to the current version.
func Decode(data []byte) (library.Snapshot, error) {
	var snap library.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return library.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return migrate(snap)
}

// migrate lifts older snapshots to the current version. Pre-versioned blobs
// (version 0) may lack the items or playlists keys entirely; those default
// to empty rather than failing, so an old install always loads. A snapshot
// from a newer release is refused.
func migrate(snap library.Snapshot) (library.Snapshot, error) {
	if snap.Version > library.SnapshotVersion {
		return library.Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, library.SnapshotVersion)
	}
	if snap.Items == nil {
		snap.Items = []library.Content{}
	}
	if snap.Playlists == nil {
		snap.Playlists = []library.Playlist{}
	}
	snap.Version = library.SnapshotVersion
	return snap, nil
}

// Encode serializes a snapshot for storage.
func Encode(snap library.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
