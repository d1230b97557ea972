package handlers

import (
	"net/http"

	"media-catalog/internal/catalog"
	"media-catalog/internal/envelope"
)

// ListPlaylists returns the name and identifier of every playlist
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.listing.ListAll(r.Context())
	if err != nil {
		fail(r.Context(), w, err, "")
		return
	}

	envelope.OK(w, playlists)
}

// GetPlaylistContent returns one playlist with its ordered content. An
// unknown identifier is a successful lookup with nothing to return: 204
// with an empty result.
func (h *Handlers) GetPlaylistContent(w http.ResponseWriter, r *http.Request) {
	identifier, ok := pathParam(r, "identifier")
	if !ok {
		envelope.Fail(w, http.StatusBadRequest, msgIdentifierRequired)
		return
	}

	pl, err := h.playlists.GetByIdentifier(r.Context(), identifier)
	switch {
	case err == nil:
		envelope.OK(w, pl)
	case catalog.IsNotFound(err):
		envelope.Write(w, http.StatusNoContent, nil, "")
	default:
		fail(r.Context(), w, err, msgIdentifierRequired)
	}
}
