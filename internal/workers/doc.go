// Package workers sizes worker pools relative to the CPUs actually
// available to the process.
//
// runtime.GOMAXPROCS(0) respects container CPU limits (Go 1.19+)
// where runtime.NumCPU does not, so all calculations start from it.
// Tag extraction and dimension probing are I/O-heavy, so the indexer
// typically uses ForIO; the SCAN_WORKERS environment variable lets an
// operator override the calculation outright.
package workers
