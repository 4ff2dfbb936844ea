package volume

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckReachableDirectory(t *testing.T) {
	c := NewChecker(time.Second)
	status := c.Check(context.Background(), t.TempDir())

	if !status.Reachable() {
		t.Errorf("Expected reachable, got reason %q", status.Reason)
	}
}

func TestCheckMissingPath(t *testing.T) {
	c := NewChecker(time.Second)
	status := c.Check(context.Background(), filepath.Join(t.TempDir(), "no-such-mount"))

	if status.Reachable() {
		t.Fatal("Expected unreachable")
	}
	if status.Reason != ReasonNotMounted {
		t.Errorf("Expected reason %q, got %q", ReasonNotMounted, status.Reason)
	}
}

func TestCheckRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker(time.Second)
	status := c.Check(context.Background(), file)

	if status.Reason != ReasonNotADirectory {
		t.Errorf("Expected reason %q, got %q", ReasonNotADirectory, status.Reason)
	}
}

func TestCheckCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewChecker(time.Minute)
	status := c.Check(ctx, t.TempDir())

	// The probe may lose the race to the cancelled context; either way
	// the check must return promptly with a classified status.
	if status.Reason != ReasonNone && status.Reason != ReasonTimeout {
		t.Errorf("Unexpected reason %q", status.Reason)
	}
}

func TestNewCheckerDefaultTimeout(t *testing.T) {
	c := NewChecker(0)
	if c.timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, c.timeout)
	}
}
