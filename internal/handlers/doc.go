// Package handlers implements the HTTP API: the paginated image
// listing backed by the read cache, and the health and metrics
// endpoints.
package handlers
