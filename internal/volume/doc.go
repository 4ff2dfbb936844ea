// Package volume gates scans on mount-point reachability.
//
// A check stats the configured root with a bounded timeout so a
// stalled network mount cannot hang an indexing batch. Unreachable
// volumes are reported with a reason and skipped by the caller; a
// check never fails the run.
package volume
