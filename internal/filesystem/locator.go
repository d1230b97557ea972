package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// ErrInvalidHash is the cause recorded when a hash could escape the asset root.
var ErrInvalidHash = errors.New("invalid asset hash")

// Asset is an opened asset file. The caller must Close it.
type Asset struct {
	*os.File
	Size int64
}

// Locator resolves storage hashes to files below a fixed asset root.
type Locator struct {
	root  string
	retry RetryConfig
}

// NewLocator creates a Locator serving files from root.
func NewLocator(root string, retry RetryConfig) *Locator {
	return &Locator{root: root, retry: retry}
}

// Root returns the asset root directory.
func (l *Locator) Root() string {
	return l.root
}

// ValidateHash rejects hashes that are not a single plain path segment.
func ValidateHash(hash string) error {
	switch {
	case hash == "", hash == ".", hash == "..":
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	case strings.ContainsAny(hash, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidHash, hash)
	case filepath.IsAbs(hash) || filepath.VolumeName(hash) != "":
		return fmt.Errorf("%w: %q is absolute", ErrInvalidHash, hash)
	}
	return nil
}

// Path returns the physical path of the asset with the given hash.
func (l *Locator) Path(hash string) (string, error) {
	if err := ValidateHash(hash); err != nil {
		return "", err
	}
	return filepath.Join(l.root, hash), nil
}

// Open opens the asset stored under hash for reading. Every failure
// (invalid hash, missing file, permission or I/O error, directory) is
// reported as catalog.ErrNotFound; the underlying cause is kept in the
// error chain for logging only.
func (l *Locator) Open(hash string) (*Asset, error) {
	const op = "open_asset"

	path, err := l.Path(hash)
	if err != nil {
		logging.Warn("Rejected asset hash %q: %v", hash, err)
		metrics.AssetOpensTotal.WithLabelValues("rejected").Inc()
		return nil, notFound(op, err)
	}

	f, err := OpenWithRetry(path, l.retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			metrics.AssetOpensTotal.WithLabelValues("not_found").Inc()
		} else {
			logging.Warn("Failed to open asset %s: %v", path, err)
			metrics.AssetOpensTotal.WithLabelValues("error").Inc()
		}
		return nil, notFound(op, err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Debug("failed to close %s: %v", path, closeErr)
		}
		if err == nil {
			err = fmt.Errorf("%s is a directory", path)
		}
		metrics.AssetOpensTotal.WithLabelValues("error").Inc()
		return nil, notFound(op, err)
	}

	metrics.AssetOpensTotal.WithLabelValues("success").Inc()
	return &Asset{File: f, Size: info.Size()}, nil
}

// Exists reports whether an asset file is present for hash.
func (l *Locator) Exists(hash string) bool {
	path, err := l.Path(hash)
	if err != nil {
		return false
	}
	info, err := StatWithRetry(path, l.retry)
	return err == nil && !info.IsDir()
}

func notFound(op string, cause error) error {
	return &catalog.Error{Op: op, Kind: catalog.ErrNotFound, Err: cause}
}
