package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"media-indexer/internal/logging"
	"media-indexer/internal/store"
)

var wipeConfirmed bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every record from all collections",
	Long: `wipe truncates the models, content and mapping collections in a
single transaction. The store file itself is kept. Requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeConfirmed {
			return fmt.Errorf("refusing to wipe without --yes")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		s, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				logging.Error("Failed to close store: %v", err)
			}
		}()

		before, err := s.CountAll(ctx)
		if err != nil {
			return err
		}
		if err := s.Truncate(ctx); err != nil {
			return err
		}

		cmd.Printf("Wiped %d model(s), %d content record(s), %d mapping(s)\n",
			before.Models, before.Content, before.Mappings)
		return nil
	},
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeConfirmed, "yes", false, "confirm the wipe")
	rootCmd.AddCommand(wipeCmd)
}
