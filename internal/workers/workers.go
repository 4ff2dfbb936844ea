package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnvVar lets operators pin the worker count regardless of
// the host's CPU configuration.
const OverrideEnvVar = "SCAN_WORKERS"

// Count returns a worker count scaled from the available CPUs.
// multiplier adjusts for task characteristics (1.0 CPU-bound, 2.0
// I/O-bound); limit caps the result, 0 meaning no cap. The
// SCAN_WORKERS environment variable overrides the calculation.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnvVar); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return capped(count, limit)
		}
	}

	available := runtime.GOMAXPROCS(0)
	count := int(float64(available) * multiplier)
	if count < 1 {
		count = 1
	}
	return capped(count, limit)
}

// ForCPU returns a count for CPU-bound tasks (one per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns a count for I/O-bound tasks (two per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

func capped(count, limit int) int {
	if limit > 0 && count > limit {
		return limit
	}
	return count
}
