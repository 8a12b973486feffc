// Package handlers provides the HTTP API of the movie catalog.
//
// It includes handlers for:
//   - Listing, searching, editing and deleting movies
//   - Ingesting files and replacing preview images
//   - Catalog statistics and playback URLs
//   - On-demand scans of the watched directory
//   - Health checks and version information
//
// The catalog service is not safe for concurrent use, so every handler
// reaches it through one mutex. API responses are JSON objects carrying
// "success"; failures add "error" and map catalog error classes to
// 404, 400, 409 and 503.
package handlers
