package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"media-indexer/internal/logging"
	"media-indexer/internal/store"
	"media-indexer/internal/syncer"
	"media-indexer/internal/volume"
)

var indexTruncate bool

var indexCmd = &cobra.Command{
	Use:   "index [roots...]",
	Short: "Run one indexing pass over the configured volumes",
	Long: `index scans each volume root, extracts metadata for new and changed
files, and synchronizes the store. Roots given as arguments override
the configured volume list. With --truncate the three collections are
cleared before the first volume is scanned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Volumes.Roots = args
		}
		if indexTruncate {
			cfg.Volumes.Truncate = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if len(cfg.Volumes.Roots) == 0 {
			return fmt.Errorf("no volume roots configured; pass them as arguments or set volumes.roots")
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

		extractor, err := selectExtractor(cfg)
		if err != nil {
			return err
		}
		logging.Info("Tag extractor: %s", extractor.Name())

		namer, err := buildNamer(cfg)
		if err != nil {
			return err
		}

		runner := syncer.New(s, extractor, volume.NewChecker(cfg.Volumes.CheckTimeout), namer, syncer.Options{
			Truncate:      cfg.Volumes.Truncate,
			Workers:       cfg.Index.Workers,
			BatchSize:     cfg.Index.BatchSize,
			RetryAttempts: cfg.Index.RetryAttempts,
			RetryBackoff:  cfg.Index.RetryBackoff,
			TagTimeout:    cfg.Tags.Timeout,
		})

		summary, err := runner.Run(ctx, cfg.Volumes.Roots)
		if err != nil {
			return err
		}

		printSummary(cmd, summary)
		return nil
	},
}

func printSummary(cmd *cobra.Command, s *syncer.Summary) {
	cmd.Printf("Run %s finished in %v\n", s.RunID, s.Duration.Round(time.Millisecond))
	cmd.Printf("  volumes scanned:  %d\n", s.VolumesScanned)
	cmd.Printf("  volumes skipped:  %d\n", len(s.VolumesSkipped))
	for _, skipped := range s.VolumesSkipped {
		cmd.Printf("    %s (%s)\n", skipped.Path, skipped.Reason)
	}
	cmd.Printf("  files scanned:    %d\n", s.FilesScanned)
	cmd.Printf("  created:          %d\n", s.Created)
	cmd.Printf("  updated:          %d\n", s.Updated)
	cmd.Printf("  unchanged:        %d\n", s.Unchanged)
	cmd.Printf("  failed:           %d\n", s.Failed)
	if s.SubtreeErrors > 0 {
		cmd.Printf("  unreadable subtrees: %d\n", s.SubtreeErrors)
	}
}

func init() {
	indexCmd.Flags().BoolVar(&indexTruncate, "truncate", false,
		"clear all collections before indexing")
	rootCmd.AddCommand(indexCmd)
}
