// Package middleware provides request logging and Prometheus
// instrumentation wrappers for the HTTP API.
package middleware
