package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"media-indexer/internal/cache"
	"media-indexer/internal/handlers"
	"media-indexer/internal/logging"
	"media-indexer/internal/media"
	"media-indexer/internal/serving"
	"media-indexer/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the content catalog over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				logging.Error("Failed to close store: %v", err)
			}
		}()

		media.InitVips()
		defer media.ShutdownVips()

		readCache := cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries, cfg.Cache.MaxBytes)
		h := handlers.New(s, readCache, media.NewThumbnailer(cfg.Server.ThumbnailSize), handlers.Options{
			DefaultPageSize: cfg.Server.DefaultPageSize,
			MaxPageSize:     cfg.Server.MaxPageSize,
		})

		srv := serving.New(h, serving.Options{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			ReadTimeout: cfg.Server.ReadTimeout,
			IdleTimeout: cfg.Server.IdleTimeout,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logging.Info("Shutdown requested, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Shutdown error: %v", err)
			return err
		}
		logging.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
