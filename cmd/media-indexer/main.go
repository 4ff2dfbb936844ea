package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"media-indexer/internal/config"
	"media-indexer/internal/logging"
	"media-indexer/internal/memory"
	"media-indexer/internal/metrics"
	"media-indexer/internal/scanner"
	"media-indexer/internal/tags"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "media-indexer",
	Short: "Index media volumes and serve the content catalog",
	Long: `media-indexer walks media volumes, derives model names from the
directory layout, extracts Finder color tags, and keeps the models,
content and mapping collections synchronized. The serve command
exposes the catalog over a paginated HTTP API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		memory.ConfigureFromEnv()
		metrics.InitializeMetrics()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config file (default: ./media-indexer.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration from the --config file when
// given, otherwise from the default locations and environment.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// selectExtractor picks the tag extractor for this host.
func selectExtractor(cfg *config.Config) (tags.Extractor, error) {
	switch cfg.Tags.Extractor {
	case "mdls":
		if !tags.Available() {
			return nil, fmt.Errorf("tag extractor %q requested but mdls is not on PATH", cfg.Tags.Extractor)
		}
		return tags.NewMDLSExtractor(), nil
	case "none":
		return tags.NoopExtractor{}, nil
	case "auto", "":
		if tags.Available() {
			return tags.NewMDLSExtractor(), nil
		}
		logging.Info("mdls not found, tag extraction disabled")
		return tags.NoopExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown tag extractor %q", cfg.Tags.Extractor)
	}
}

func buildNamer(cfg *config.Config) (scanner.ModelNamer, error) {
	return scanner.NewNamer(scanner.NamingRule(cfg.Index.NamingRule))
}
