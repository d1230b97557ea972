// Package database provides the document store clients the catalog reads
// from.
//
// Two implementations of catalog.Store are available:
//   - MongoStore reads the "content" and "playlist" collections of a
//     MongoDB database. This is the production backend.
//   - SQLiteStore reads an embedded SQLite file with the same logical
//     layout, for single-node deployments and local development.
//
// Both stores are read-only from the service's point of view. Point queries
// that match nothing return catalog.ErrNotFound; every other failure is
// wrapped in catalog.ErrBackend. Query counts and latencies are exported
// through the metrics package.
package database
