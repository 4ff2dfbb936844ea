package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"media-indexer/internal/cache"
	"media-indexer/internal/logging"
	"media-indexer/internal/media"
	"media-indexer/internal/store"
)

// Options configure the handler set.
type Options struct {
	// DefaultPageSize applies when the request gives no per_page.
	DefaultPageSize int
	// MaxPageSize is the clamp ceiling for per_page.
	MaxPageSize int
}

// Handlers holds the shared dependencies of every endpoint.
type Handlers struct {
	store       *store.Store
	cache       *cache.Cache
	thumbnailer *media.Thumbnailer
	opts        Options
	startTime   time.Time
}

// New wires the handler set.
func New(s *store.Store, c *cache.Cache, t *media.Thumbnailer, opts Options) *Handlers {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &Handlers{
		store:       s,
		cache:       c,
		thumbnailer: t,
		opts:        opts,
		startTime:   time.Now(),
	}
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug("Failed to write response: %v", err)
	}
}
