package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-indexer/internal/logging"
)

// DefaultRatio is the fraction of the container limit handed to the
// Go heap. The remainder covers libvips buffers, subprocess overhead
// and goroutine stacks.
const DefaultRatio = 0.85

// Result reports what ConfigureFromEnv decided.
type Result struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT" or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from the environment. Call early
// in main, before significant allocations.
//
// GOMEMLIMIT, when set, wins. Otherwise MEMORY_LIMIT (the container
// limit in bytes, typically injected via the Kubernetes Downward API)
// is scaled by MEMORY_RATIO and applied.
func ConfigureFromEnv() Result {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := Result{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return result
	}

	env := os.Getenv("MEMORY_LIMIT")
	if env == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving GOMEMLIMIT unconfigured")
		return Result{Source: "none"}
	}

	containerLimit, err := strconv.ParseInt(env, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring unparseable MEMORY_LIMIT %q", env)
		return Result{Source: "none"}
	}

	ratio := DefaultRatio
	if ratioEnv := os.Getenv("MEMORY_RATIO"); ratioEnv != "" {
		if parsed, err := strconv.ParseFloat(ratioEnv, 64); err == nil && parsed > 0 && parsed <= 1.0 {
			ratio = parsed
		} else {
			logging.Warn("Ignoring MEMORY_RATIO %q, using %.2f", ratioEnv, DefaultRatio)
		}
	}

	goLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("GOMEMLIMIT configured: %d bytes (%.0f%% of %d byte container limit)",
		goLimit, ratio*100, containerLimit)

	return Result{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}
