package tags

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"media-indexer/internal/logging"
)

// Extractor reads the platform label metadata for a file. Extraction
// is best-effort enrichment: implementations return an empty set, not
// an error, for files whose metadata is missing or unparseable.
type Extractor interface {
	// Extract returns the taxonomy tags attached to the file at path.
	Extract(ctx context.Context, path string) (Set, error)

	// Name identifies the implementation for logs and the run summary.
	Name() string
}

// NoopExtractor is the extractor for hosts without Spotlight metadata
// tooling. It always returns an empty set.
type NoopExtractor struct{}

func (NoopExtractor) Extract(_ context.Context, _ string) (Set, error) {
	return NewSet(), nil
}

func (NoopExtractor) Name() string { return "noop" }

// MDLSExtractor reads kMDItemUserTags through the mdls command line
// tool, the same attribute namespace Finder writes its color labels
// to. It requires mdls on PATH; use Available before selecting it.
type MDLSExtractor struct {
	// mdlsPath overrides the binary location, used by tests.
	mdlsPath string
}

// NewMDLSExtractor returns an extractor backed by the mdls binary.
func NewMDLSExtractor() *MDLSExtractor {
	return &MDLSExtractor{mdlsPath: "mdls"}
}

// Available reports whether the mdls binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("mdls")
	return err == nil
}

func (e *MDLSExtractor) Name() string { return "mdls" }

// Extract shells out to mdls and decodes the user-tag list. Any
// failure, including mdls being missing or the payload not parsing,
// degrades to an empty set.
func (e *MDLSExtractor) Extract(ctx context.Context, path string) (Set, error) {
	cmd := exec.CommandContext(ctx, e.mdlsPath, "-name", "kMDItemUserTags", path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Debug("mdls failed for %s: %v (stderr: %s)", path, err, stderr.String())
		return NewSet(), nil
	}

	return parseUserTags(stdout.String()), nil
}

// parseUserTags decodes the mdls kMDItemUserTags output block:
//
//	kMDItemUserTags = (
//	    "Red\n6",
//	    Blue,
//	    "Summer 2019"
//	)
//
// Finder stores color labels as "Name\nColorIndex"; the suffix is
// discarded. Names outside the taxonomy are dropped. A (null) value,
// an empty list, or anything malformed yields an empty set. The
// opening paren may sit on the attribute line or on the next one.
func parseUserTags(raw string) Set {
	set := NewSet()

	sawAttr := false
	inBlock := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if !inBlock {
			if !sawAttr {
				if !strings.HasPrefix(trimmed, "kMDItemUserTags") {
					continue
				}
				sawAttr = true
				if strings.Contains(trimmed, "(null)") {
					return set
				}
				if strings.Contains(trimmed, "(") {
					inBlock = true
				}
				continue
			}
			if strings.HasPrefix(trimmed, "(") {
				inBlock = true
			}
			continue
		}

		if trimmed == ")" {
			break
		}

		name := strings.Trim(trimmed, `",`)
		// Strip the Finder color-index suffix ("Red\n6").
		if i := strings.Index(name, `\n`); i >= 0 {
			name = name[:i]
		}
		if name == "" {
			continue
		}

		if tag, ok := Parse(name); ok {
			set.Add(tag)
		} else {
			logging.Debug("Ignoring label outside taxonomy: %q", name)
		}
	}

	return set
}
