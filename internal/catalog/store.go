package catalog

import "context"

// Store is the document store the catalog reads from. Implementations
// return ErrNotFound for point queries that match nothing and wrap every
// other failure in ErrBackend.
type Store interface {
	// FindContent looks up the content record whose content_id equals id.
	FindContent(ctx context.Context, contentID string) (ContentRecord, error)
	// FindPlaylist loads the full playlist document with the given identifier.
	FindPlaylist(ctx context.Context, identifier string) (Playlist, error)
	// ListPlaylists returns every playlist projected to name and identifier.
	// On a failure part way through it returns the rows read so far, never
	// nil, along with the error. A failure before the first row is read
	// returns a nil slice.
	ListPlaylists(ctx context.Context) ([]PlaylistLight, error)
	// ListContent returns every content record.
	ListContent(ctx context.Context) ([]ContentRecord, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
