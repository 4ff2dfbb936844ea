package serving

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-indexer/internal/handlers"
	"media-indexer/internal/logging"
	"media-indexer/internal/middleware"
)

// Options configure the HTTP server.
type Options struct {
	Host        string
	Port        int
	ReadTimeout time.Duration
	IdleTimeout time.Duration
}

// Server is the API server.
type Server struct {
	srv *http.Server
}

// NewRouter builds the API route table.
func NewRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.Livez).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/images", h.ListImages).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	return r
}

// New wraps the router in logging and metrics middleware and builds
// the server.
func New(h *handlers.Handlers, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	handler := middleware.Logger(middleware.Metrics(NewRouter(h)))

	return &Server{
		srv: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:     handler,
			ReadTimeout: opts.ReadTimeout,
			IdleTimeout: opts.IdleTimeout,
		},
	}
}

// ListenAndServe runs the server until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	logging.Info("API server listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
