package catalog

import (
	"context"
	"errors"

	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// PlaylistAggregator loads full playlist documents.
type PlaylistAggregator struct {
	store Store
}

// NewPlaylistAggregator creates a PlaylistAggregator reading from store.
func NewPlaylistAggregator(store Store) *PlaylistAggregator {
	return &PlaylistAggregator{store: store}
}

// GetByIdentifier returns the playlist with the given identifier, content
// included and in stored order. A playlist that does not exist yields
// ErrNotFound; a store failure yields ErrBackend. The two must stay
// distinct: callers report the first as "no content" and the second as an
// internal error.
func (a *PlaylistAggregator) GetByIdentifier(ctx context.Context, identifier string) (Playlist, error) {
	const op = "get_playlist"

	if identifier == "" {
		return Playlist{}, BadRequest(op, errors.New("playlist identifier is empty"))
	}

	pl, err := a.store.FindPlaylist(ctx, identifier)
	if err != nil {
		err = Backend(op, err)
		metrics.PlaylistLookupsTotal.WithLabelValues(outcome(err)).Inc()
		return Playlist{}, err
	}

	metrics.PlaylistLookupsTotal.WithLabelValues(outcome(nil)).Inc()
	return pl, nil
}

// ListingOptions controls how the catalog listing degrades.
type ListingOptions struct {
	// AllowPartial returns the playlists read before a mid-stream store
	// failure instead of failing the whole listing.
	AllowPartial bool
}

// Listing enumerates every playlist in its light projection.
type Listing struct {
	store Store
	opts  ListingOptions
}

// NewListing creates a Listing reading from store.
func NewListing(store Store, opts ListingOptions) *Listing {
	return &Listing{store: store, opts: opts}
}

// ListAll returns all playlists as {name, identifier} pairs. The order is
// whatever the store yields. The result is never nil on success.
func (l *Listing) ListAll(ctx context.Context) ([]PlaylistLight, error) {
	const op = "list_playlists"

	playlists, err := l.store.ListPlaylists(ctx)
	if err != nil {
		// nil means the query never started streaming
		if !l.opts.AllowPartial || playlists == nil {
			return nil, Backend(op, err)
		}
		log := logging.WithComponent(ctx, "listing")
		log.Warn().Err(err).Int("returned", len(playlists)).Msg("playlist listing interrupted, returning partial result")
		metrics.PartialListingsTotal.Inc()
	}

	if playlists == nil {
		playlists = []PlaylistLight{}
	}
	metrics.ListedPlaylists.Observe(float64(len(playlists)))
	return playlists, nil
}
