package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"media-catalog/internal/catalog"
	"media-catalog/internal/envelope"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/streaming"
)

// GetContentHash returns the storage hash of a content record. Store
// failures and unknown ids both answer 404; the failure is logged.
func (h *Handlers) GetContentHash(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(r, "id")
	if !ok {
		envelope.Fail(w, http.StatusBadRequest, msgContentIDRequired)
		return
	}

	hash, err := h.content.ResolveHash(r.Context(), id)
	if err != nil {
		logCollapsed(r, "hash", id, err)
		envelope.Fail(w, http.StatusNotFound, msgContentNotFound)
		return
	}

	envelope.OK(w, hash)
}

// DownloadContent streams the asset bytes of a content record. Any failure
// to resolve or open the asset answers 404 "file not found".
func (h *Handlers) DownloadContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(r, "id")
	if !ok {
		envelope.Fail(w, http.StatusBadRequest, msgContentIDRequired)
		return
	}

	hash, err := h.content.ResolveHash(r.Context(), id)
	if err != nil {
		logCollapsed(r, "download", id, err)
		envelope.Fail(w, http.StatusNotFound, msgFileNotFound)
		return
	}

	asset, err := h.locator.Open(hash)
	if err != nil {
		l := logging.FromContext(r.Context())
		l.Info().Str("content_id", id).Str("hash", hash).Err(err).Msg("asset file unavailable")
		envelope.Fail(w, http.StatusNotFound, msgFileNotFound)
		return
	}
	defer func() {
		if closeErr := asset.Close(); closeErr != nil {
			logging.Debug("failed to close asset %s: %v", hash, closeErr)
		}
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	n, err := streaming.Copy(r.Context(), w, asset, h.stream)
	switch {
	case err == nil:
		metrics.DownloadsTotal.WithLabelValues("complete").Inc()
	case errors.Is(err, streaming.ErrClientGone):
		metrics.DownloadsTotal.WithLabelValues("client_gone").Inc()
		logging.Debug("client left during download of %s after %d bytes", id, n)
	default:
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		l := logging.FromContext(r.Context())
		l.Warn().Str("content_id", id).Int64("bytes", n).Err(err).Msg("download aborted")
	}
}

// logCollapsed records why a lookup answered 404. Backend failures are
// reported at error level since the client cannot tell them apart from a
// missing record.
func logCollapsed(r *http.Request, endpoint, id string, err error) {
	l := logging.FromContext(r.Context())
	if errors.Is(err, catalog.ErrBackend) {
		l.Error().Str("endpoint", endpoint).Str("content_id", id).Err(err).
			Msg("content lookup failed; answering not found")
		return
	}
	l.Debug().Str("endpoint", endpoint).Str("content_id", id).Err(err).Msg("content not found")
}
