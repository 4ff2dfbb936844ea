package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"media-indexer/internal/logging"
	"media-indexer/internal/store"
	"media-indexer/internal/volume"
)

var checkCmd = &cobra.Command{
	Use:   "check [roots...]",
	Short: "Check volume reachability and store integrity",
	Long: `check probes each volume root the way an indexing run would, then
scans the mapping collection for references to missing models or
content. It exits non-zero when a volume is unreachable or the store
is inconsistent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Volumes.Roots = args
		}

		ctx := context.Background()
		checker := volume.NewChecker(cfg.Volumes.CheckTimeout)

		unreachable := 0
		for _, root := range cfg.Volumes.Roots {
			status := checker.Check(ctx, root)
			if status.Reachable() {
				cmd.Printf("ok       %s\n", root)
			} else {
				cmd.Printf("FAIL     %s (%s)\n", root, status.Reason)
				unreachable++
			}
		}

		s, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				logging.Error("Failed to close store: %v", err)
			}
		}()

		orphans, err := s.VerifyIntegrity(ctx)
		if err != nil {
			return err
		}
		for _, orphan := range orphans {
			cmd.Printf("ORPHAN   %s -> %s\n", orphan.ModelName, orphan.ContentPath)
		}

		counts, err := s.CountAll(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("store: %d model(s), %d content record(s), %d mapping(s)\n",
			counts.Models, counts.Content, counts.Mappings)

		if unreachable > 0 || len(orphans) > 0 {
			return fmt.Errorf("%d unreachable volume(s), %d orphaned mapping(s)",
				unreachable, len(orphans))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
