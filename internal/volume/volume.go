package volume

import (
	"context"
	"os"
	"time"

	"media-indexer/internal/logging"
)

// Reason classifies why a volume is unreachable.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotMounted       Reason = "not-mounted"
	ReasonNotADirectory    Reason = "not-a-directory"
	ReasonPermissionDenied Reason = "permission-denied"
	ReasonTimeout          Reason = "timeout"
)

// DefaultTimeout bounds a single reachability probe. NFS mounts that
// have gone away typically block stat indefinitely; the probe runs in
// its own goroutine and is abandoned when the deadline passes.
const DefaultTimeout = 5 * time.Second

// Status is the outcome of a reachability check.
type Status struct {
	Path   string
	Reason Reason
}

// Reachable reports whether the volume can be scanned.
func (s Status) Reachable() bool {
	return s.Reason == ReasonNone
}

// Checker probes volume roots before a scan.
type Checker struct {
	timeout time.Duration
}

// NewChecker returns a Checker with the given probe timeout;
// a non-positive timeout falls back to DefaultTimeout.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{timeout: timeout}
}

type statResult struct {
	info os.FileInfo
	err  error
}

// Check probes path and classifies the outcome. It never returns an
// error: every failure mode maps to an unreachable Status the caller
// logs and skips.
func (c *Checker) Check(ctx context.Context, path string) Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Buffered so the goroutine can exit even after we give up.
	resultCh := make(chan statResult, 1)
	go func() {
		info, err := os.Stat(path)
		resultCh <- statResult{info: info, err: err}
	}()

	select {
	case <-ctx.Done():
		logging.Warn("Volume check timed out after %v: %s", c.timeout, path)
		return Status{Path: path, Reason: ReasonTimeout}
	case res := <-resultCh:
		return classify(path, res)
	}
}

func classify(path string, res statResult) Status {
	switch {
	case os.IsNotExist(res.err):
		return Status{Path: path, Reason: ReasonNotMounted}
	case os.IsPermission(res.err):
		return Status{Path: path, Reason: ReasonPermissionDenied}
	case res.err != nil:
		// Treat any other stat failure as the mount being gone.
		logging.Debug("Volume stat failed for %s: %v", path, res.err)
		return Status{Path: path, Reason: ReasonNotMounted}
	case !res.info.IsDir():
		return Status{Path: path, Reason: ReasonNotADirectory}
	default:
		return Status{Path: path}
	}
}
