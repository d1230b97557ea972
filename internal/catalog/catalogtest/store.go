// Package catalogtest provides an in-memory catalog.Store for tests.
package catalogtest

import (
	"context"
	"sync"

	"media-catalog/internal/catalog"
)

// Store is an in-memory catalog.Store. The Err fields inject failures.
type Store struct {
	mu        sync.RWMutex
	content   map[string]catalog.ContentRecord
	playlists []catalog.Playlist

	// FindErr is returned by FindContent and FindPlaylist when set.
	FindErr error
	// ListErr is returned by ListPlaylists and ListContent when set.
	ListErr error
	// ListFailAfter makes ListPlaylists fail with ListErr after this
	// many rows when ListErr is set. Zero fails before any row is read.
	ListFailAfter int
	// PingErr is returned by Ping when set.
	PingErr error
}

// New returns an empty Store.
func New() *Store {
	return &Store{content: make(map[string]catalog.ContentRecord)}
}

// AddContent stores rec, replacing any record with the same id.
func (s *Store) AddContent(rec catalog.ContentRecord) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[rec.ContentID] = rec
	return s
}

// AddPlaylist appends p in insertion order.
func (s *Store) AddPlaylist(p catalog.Playlist) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = append(s.playlists, p)
	return s
}

// FindContent implements catalog.Store.
func (s *Store) FindContent(_ context.Context, contentID string) (catalog.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FindErr != nil {
		return catalog.ContentRecord{}, s.FindErr
	}
	rec, ok := s.content[contentID]
	if !ok {
		return catalog.ContentRecord{}, catalog.NotFound("find_content")
	}
	return rec, nil
}

// FindPlaylist implements catalog.Store.
func (s *Store) FindPlaylist(_ context.Context, identifier string) (catalog.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FindErr != nil {
		return catalog.Playlist{}, s.FindErr
	}
	for _, p := range s.playlists {
		if p.Identifier == identifier {
			return p, nil
		}
	}
	return catalog.Playlist{}, catalog.NotFound("find_playlist")
}

// ListPlaylists implements catalog.Store.
func (s *Store) ListPlaylists(_ context.Context) ([]catalog.PlaylistLight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ListErr != nil && s.ListFailAfter == 0 {
		return nil, s.ListErr
	}

	out := []catalog.PlaylistLight{}
	for i, p := range s.playlists {
		if s.ListErr != nil && i >= s.ListFailAfter {
			return out, s.ListErr
		}
		out = append(out, p.Light())
	}
	if s.ListErr != nil {
		return out, s.ListErr
	}
	return out, nil
}

// ListContent implements catalog.Store.
func (s *Store) ListContent(_ context.Context) ([]catalog.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]catalog.ContentRecord, 0, len(s.content))
	for _, rec := range s.content {
		out = append(out, rec)
	}
	return out, nil
}

// Ping implements catalog.Store.
func (s *Store) Ping(_ context.Context) error {
	return s.PingErr
}

// Close implements catalog.Store.
func (s *Store) Close(_ context.Context) error {
	return nil
}
