// Package scanner walks a volume's directory tree and streams
// candidate media files to the synchronizer.
//
// The walk never holds the full listing in memory: entries flow over
// a channel as they are discovered. Symbolic links are not followed,
// hidden files and directories are skipped, and an unreadable subtree
// is recorded and skipped rather than aborting the scan. Each entry
// carries the model name derived from its path by the configured
// ModelNamer rule.
package scanner
