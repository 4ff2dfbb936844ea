// Package syncer drives an indexing run: it checks volume
// reachability, scans each root, enriches changed files with tags and
// image dimensions in a worker pool, and writes the results to the
// store through a single batched writer.
package syncer
