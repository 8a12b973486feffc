// Package middleware provides HTTP middleware for the catalog server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - Configurable filtering for static files and health checks
package middleware
