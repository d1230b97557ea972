// Package main provides the entry point for the media catalog service.
//
// The service answers read-only HTTP queries against a document store of
// playlists and content records, and streams the asset files those records
// point at.
//
// # Application Lifecycle
//
//  1. Configuration: loads an optional .env file and the environment before
//     the first log line, then sets GOMEMLIMIT from MEMORY_LIMIT or the
//     cgroup limit
//  2. Store Initialization: connects to MongoDB (or opens SQLite) and
//     ensures the unique indexes exist
//  3. Background Work: a metrics collector counts playlists and content
//     records, and the asset audit checks that every record's file exists
//  4. HTTP Server Setup: routes, request ids, access log, request metrics
//  5. Graceful Shutdown: handles SIGINT/SIGTERM and stops everything in order
//
// # HTTP Server
//
// The main server (default port 8080) exposes:
//
//	GET /                                 plain "OK"
//	GET /playlists, /playlist             every playlist, name and identifier only
//	GET /playlist/{identifier}/content    one playlist with its ordered content
//	GET /content/{id}/hash                storage hash of a content record
//	GET /content/{id}/download            raw bytes of the asset file
//	GET /audit, POST /audit               last asset audit report, run one now
//	GET /health, /healthz, /livez, /readyz, /version
//
// Structured responses use the {success, result | error} envelope. The
// optional metrics server (default port 9090) serves /metrics and /health.
//
// # Environment Variables
//
//   - STORE_DRIVER: mongo or sqlite (default: mongo)
//   - MONGO_HOST, MONGO_PORT: MongoDB address (default: 127.0.0.1:27017)
//   - STORE_DATABASE: database name (default: guava)
//   - SQLITE_PATH: database file for the sqlite driver
//   - STORE_ENSURE_INDEXES: create unique indexes on startup (default: true)
//   - STORE_TIMEOUT: per-query timeout (default: 5s)
//   - ASSET_DIR: directory of asset files named by hash (default: content)
//   - PORT, METRICS_PORT, METRICS_ENABLED
//   - LISTING_ALLOW_PARTIAL: return rows read before a listing failure
//   - STATS_INTERVAL: catalog statistics refresh (default: 5m)
//   - AUDIT_INTERVAL: asset audit interval, 0 disables (default: 1h)
//   - AUDIT_TIMEOUT, AUDIT_WORKERS
//   - MEMORY_LIMIT, MEMORY_RATIO: container memory limit for GOMEMLIMIT
//   - LOG_LEVEL, LOG_HEALTH_CHECKS
//
// # Graceful Shutdown
//
//  1. Stop metrics collector
//  2. Stop asset audit (an audit in progress is cancelled)
//  3. Shutdown metrics server (if running)
//  4. Shutdown main HTTP server (30s timeout)
//  5. Close the store connection
package main
