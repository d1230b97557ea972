package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"media-catalog/internal/catalog"
	"media-catalog/internal/envelope"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/startup"
	"media-catalog/internal/streaming"
)

// Client-facing messages.
const (
	msgContentNotFound    = "content not found"
	msgFileNotFound       = "file not found"
	msgIdentifierRequired = "playlist identifier is required"
	msgContentIDRequired  = "content id is required"
	msgAuditDisabled      = "asset audit is disabled"
	msgAuditPending       = "asset audit has not completed yet"
)

// Handlers serves the catalog HTTP API.
type Handlers struct {
	store     catalog.Store
	content   *catalog.ContentStore
	playlists *catalog.PlaylistAggregator
	listing   *catalog.Listing
	locator   *filesystem.Locator
	stream    streaming.Config
	auditor   AssetAuditor
	driver    string
	started   time.Time
}

// New builds the handlers over store. Assets are served from
// config.AssetDir.
func New(store catalog.Store, config *startup.Config) *Handlers {
	return &Handlers{
		store:     store,
		content:   catalog.NewContentStore(store),
		playlists: catalog.NewPlaylistAggregator(store),
		listing:   catalog.NewListing(store, catalog.ListingOptions{AllowPartial: config.ListingAllowPartial}),
		locator:   filesystem.NewLocator(config.AssetDir, filesystem.DefaultRetryConfig()),
		stream:    streaming.DefaultConfig(),
		driver:    config.StoreDriver,
		started:   time.Now(),
	}
}

// statusForError maps an error kind to its HTTP status. Backend and
// unclassified errors are 500.
// pathParam returns the route variable unchanged. A missing or blank
// value reports false.
func pathParam(r *http.Request, key string) (string, bool) {
	v := mux.Vars(r)[key]
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, catalog.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the failure envelope for err. Backend detail goes to the log
// only; the client sees the generic message.
func fail(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		l := logging.FromContext(ctx)
		l.Error().Err(err).Msg("request failed")
		msg = envelope.DefaultError
	}
	envelope.Fail(w, status, msg)
}
