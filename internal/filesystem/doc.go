// Package filesystem locates content-addressed assets on disk.
//
// Assets live directly below a single root directory and are named by
// their storage hash. A Locator validates the hash (it must be one plain
// path segment, so it can never escape the root), opens the file, and
// reports every failure as catalog.ErrNotFound to its callers.
//
// Opens and stats go through OpenWithRetry / StatWithRetry, which retry
// ESTALE errors with exponential backoff so that asset roots mounted over
// NFS survive server-side file handle invalidation.
package filesystem
