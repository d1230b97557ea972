// Package middleware provides HTTP middleware for the catalog service.
//
// It includes:
//   - Request ID assignment and propagation (X-Request-ID)
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics keyed by route template
package middleware
