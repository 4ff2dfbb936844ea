// Package serving builds the HTTP router and runs the API server
// with graceful shutdown.
package serving
