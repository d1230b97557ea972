package catalog

import (
	"context"
	"errors"
	"time"

	"media-catalog/internal/metrics"
)

// ContentStore maps content identifiers onto their storage hashes.
type ContentStore struct {
	store Store
}

// NewContentStore creates a ContentStore reading from store.
func NewContentStore(store Store) *ContentStore {
	return &ContentStore{store: store}
}

// ResolveHash returns the storage hash of the content record with the
// given identifier. It returns ErrNotFound when no record matches and
// ErrBackend when the store fails. The HTTP layer reports both as "not
// found"; the distinction only reaches the logs and metrics.
func (c *ContentStore) ResolveHash(ctx context.Context, contentID string) (string, error) {
	const op = "resolve_hash"

	if contentID == "" {
		return "", BadRequest(op, errors.New("content id is empty"))
	}

	start := time.Now()
	rec, err := c.store.FindContent(ctx, contentID)
	if err != nil {
		err = Backend(op, err)
		recordResolution(start, err)
		return "", err
	}

	if rec.Hash == "" {
		// A record without a hash cannot be served; treat it as broken data.
		err = Backend(op, errors.New("content record "+contentID+" has an empty hash"))
		recordResolution(start, err)
		return "", err
	}

	recordResolution(start, nil)
	return rec.Hash, nil
}

func recordResolution(start time.Time, err error) {
	metrics.ContentResolutionsTotal.WithLabelValues(outcome(err)).Inc()
	metrics.ContentResolutionDuration.Observe(time.Since(start).Seconds())
}

// outcome turns an error into a low-cardinality metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}
