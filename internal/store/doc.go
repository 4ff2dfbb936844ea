// Package store persists the three indexer collections (models,
// content and model_content_map) in SQLite.
//
// SQLite enforces the two unique keys (model name, content path) and
// the composite mapping uniqueness, but not cross-collection
// references; referential integrity for mappings is enforced at write
// time by the upsert order and an existence check, and a violation is
// treated as a data-corruption signal rather than silently dropped.
// Truncation deletes all three collections inside one transaction, so
// a crash cannot leave the store partially truncated.
package store
