// Package logging provides a simple leveled logging interface for the
// media indexer.
//
// Levels are DEBUG, INFO, WARN, ERROR and FATAL. The active level is
// taken from the LOG_LEVEL environment variable (DEBUG=1 also enables
// debug output) and can be overridden programmatically with SetLevel,
// which tests use to raise the threshold.
package logging
