// Package tags decodes Finder color labels attached to files through
// macOS extended attributes.
//
// Labels are constrained to the fixed seven-color taxonomy (Red,
// Orange, Yellow, Green, Blue, Purple, Gray). Extraction sits behind
// the Extractor interface so hosts without the Spotlight tooling use
// the no-op implementation and deterministically report no tags;
// extraction failures never fail the record being indexed.
package tags
