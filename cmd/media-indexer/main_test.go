package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"media-indexer/internal/config"
	"media-indexer/internal/syncer"
	"media-indexer/internal/tags"
	"media-indexer/internal/volume"

	"github.com/spf13/cobra"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"index": false, "serve": false, "wipe": false, "check": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestWipeRequiresConfirmation(t *testing.T) {
	wipeConfirmed = false
	err := wipeCmd.RunE(wipeCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("wipe without --yes: error = %v, want confirmation refusal", err)
	}
}

func TestSelectExtractorNone(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tags.Extractor = "none"

	extractor, err := selectExtractor(cfg)
	if err != nil {
		t.Fatalf("selectExtractor() error = %v", err)
	}
	if _, ok := extractor.(tags.NoopExtractor); !ok {
		t.Errorf("extractor = %T, want NoopExtractor", extractor)
	}
}

func TestSelectExtractorUnknown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tags.Extractor = "xattr"

	if _, err := selectExtractor(cfg); err == nil {
		t.Error("selectExtractor() should reject unknown extractors")
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	printSummary(cmd, &syncer.Summary{
		RunID:          "run-1",
		VolumesScanned: 2,
		VolumesSkipped: []volume.Status{{Path: "/mnt/gone", Reason: volume.ReasonNotMounted}},
		FilesScanned:   10,
		Created:        4,
		Updated:        1,
		Unchanged:      5,
		Duration:       1500 * time.Millisecond,
	})

	text := out.String()
	for _, fragment := range []string{"run-1", "/mnt/gone", "not-mounted", "created:          4"} {
		if !strings.Contains(text, fragment) {
			t.Errorf("summary output missing %q:\n%s", fragment, text)
		}
	}
}
