package scanner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ModelNamer derives the model name a file belongs to from its
// location. relPath is the file's path relative to the volume root,
// always slash-separated.
type ModelNamer interface {
	ModelName(root, relPath string) string
}

// NamingRule selects a ModelNamer implementation by configuration.
type NamingRule string

const (
	// RuleParentDir names the model after the file's immediate parent
	// directory. Files directly under the root fall back to the root's
	// leaf name.
	RuleParentDir NamingRule = "parent-dir"
	// RuleTopDir names the model after the first path segment under
	// the volume root. This matches trees organized as one directory
	// per subject with arbitrary nesting below it.
	RuleTopDir NamingRule = "top-dir"
	// RuleRootLeaf names every file on the volume after the root's
	// leaf directory (one model per volume).
	RuleRootLeaf NamingRule = "root-leaf"
)

// NewNamer builds the ModelNamer for a configured rule.
func NewNamer(rule NamingRule) (ModelNamer, error) {
	switch rule {
	case RuleParentDir, "":
		return parentDirNamer{}, nil
	case RuleTopDir:
		return topDirNamer{}, nil
	case RuleRootLeaf:
		return rootLeafNamer{}, nil
	default:
		return nil, fmt.Errorf("unknown model naming rule %q", rule)
	}
}

// Normalize case-folds and trims a model name so that "Alice Smith"
// and "alice smith " resolve to the same model record.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type parentDirNamer struct{}

func (parentDirNamer) ModelName(root, relPath string) string {
	parent := filepath.Dir(filepath.FromSlash(relPath))
	if parent == "." || parent == string(filepath.Separator) {
		return Normalize(filepath.Base(root))
	}
	return Normalize(filepath.Base(parent))
}

type topDirNamer struct{}

func (topDirNamer) ModelName(root, relPath string) string {
	segments := strings.Split(relPath, "/")
	if len(segments) < 2 {
		// File sits directly under the root.
		return Normalize(filepath.Base(root))
	}
	return Normalize(segments[0])
}

type rootLeafNamer struct{}

func (rootLeafNamer) ModelName(root, _ string) string {
	return Normalize(filepath.Base(root))
}
