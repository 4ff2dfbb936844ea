package tags

import (
	"sort"
	"strings"
)

// Tag is one color of the fixed Finder label taxonomy.
type Tag string

const (
	TagRed    Tag = "Red"
	TagOrange Tag = "Orange"
	TagYellow Tag = "Yellow"
	TagGreen  Tag = "Green"
	TagBlue   Tag = "Blue"
	TagPurple Tag = "Purple"
	TagGray   Tag = "Gray"
)

// All lists every tag in the taxonomy in canonical order.
var All = []Tag{TagRed, TagOrange, TagYellow, TagGreen, TagBlue, TagPurple, TagGray}

// Parse maps a label name to its taxonomy tag. Matching is
// case-insensitive and accepts the "Grey" spelling Finder sometimes
// emits. Unknown names are rejected, not coerced.
func Parse(name string) (Tag, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "red":
		return TagRed, true
	case "orange":
		return TagOrange, true
	case "yellow":
		return TagYellow, true
	case "green":
		return TagGreen, true
	case "blue":
		return TagBlue, true
	case "purple":
		return TagPurple, true
	case "gray", "grey":
		return TagGray, true
	}
	return "", false
}

// Set is an order-insensitive collection of taxonomy tags.
type Set map[Tag]struct{}

// NewSet builds a set from the given tags, collapsing duplicates.
func NewSet(tags ...Tag) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts a tag into the set.
func (s Set) Add(t Tag) {
	s[t] = struct{}{}
}

// Contains reports whether the set holds the tag.
func (s Set) Contains(t Tag) bool {
	_, ok := s[t]
	return ok
}

// Slice returns the tags sorted in canonical taxonomy order, which
// keeps persisted tag lists stable across runs.
func (s Set) Slice() []Tag {
	out := make([]Tag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return taxonomyIndex(out[i]) < taxonomyIndex(out[j])
	})
	return out
}

// Strings returns the sorted tag names.
func (s Set) Strings() []string {
	tags := s.Slice()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// Equal reports whether two sets hold the same tags.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}

// FromStrings rebuilds a set from persisted tag names, dropping any
// name that no longer parses.
func FromStrings(names []string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if t, ok := Parse(name); ok {
			s[t] = struct{}{}
		}
	}
	return s
}

func taxonomyIndex(t Tag) int {
	for i, candidate := range All {
		if candidate == t {
			return i
		}
	}
	return len(All)
}
