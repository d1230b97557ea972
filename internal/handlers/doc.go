// Package handlers provides the HTTP handlers of the catalog API.
//
// It includes handlers for:
//   - Playlist discovery and playlist content
//   - Content hash resolution and raw asset downloads
//   - Health, liveness, readiness and version probes
//
// Catalog responses are wrapped by package envelope; downloads stream raw
// bytes and fall back to an envelope only on failure.
package handlers
