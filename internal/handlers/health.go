package handlers

import (
	"net/http"
	"runtime"
	"time"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// healthResponse is the /healthz body.
type healthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Models       int    `json:"models"`
	Content      int    `json:"content"`
	Mappings     int    `json:"mappings"`
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// Health serves GET /healthz with service and collection stats.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:       "healthy",
		Version:      Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	counts, err := h.store.CountAll(r.Context())
	if err != nil {
		response.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	response.Models = counts.Models
	response.Content = counts.Content
	response.Mappings = counts.Mappings

	writeJSON(w, http.StatusOK, response)
}

// Livez serves the liveness probe; it succeeds as long as the process
// can answer HTTP at all.
func (h *Handlers) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz serves the readiness probe; it fails when the store does not
// answer.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
