// Package metrics provides Prometheus instrumentation for the media catalog.
//
// All metrics are prefixed with "media_catalog_" and registered through
// promauto at package init.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: requests by method, normalized path and status
//   - HTTPRequestDuration: request latency by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Store Metrics
//   - StoreQueryTotal / StoreQueryDuration: document store queries by operation
//   - StoreUp: result of the last periodic ping
//
// ## Catalog Metrics
//   - ContentResolutionsTotal: content id lookups by outcome
//   - PlaylistLookupsTotal: playlist lookups by outcome
//   - PartialListingsTotal: listings that degraded to partial results
//   - CatalogPlaylists / CatalogContent: catalog size, refreshed by the Collector
//
// ## Asset Metrics
//   - AssetOpensTotal: asset open attempts by outcome
//   - AssetBytesServed / DownloadsTotal: download volume and completion
//   - Filesystem*: NFS stale-handle retry behaviour
//
// Call InitializeMetrics once at startup so every labelled series is
// exported from the first scrape.
package metrics
