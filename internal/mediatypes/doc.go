// Package mediatypes classifies files by extension into the media
// kinds the indexer records, and maps extensions to MIME types and
// short format names for persisted content metadata.
package mediatypes
