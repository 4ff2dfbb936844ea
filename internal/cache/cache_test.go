package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(map[string]string{"page": "1", "per_page": "20"})
	b := Fingerprint(map[string]string{"per_page": "20", "page": "1"})
	if a != b {
		t.Errorf("Fingerprint not order-independent: %q vs %q", a, b)
	}

	c := Fingerprint(map[string]string{"page": "2", "per_page": "20"})
	if a == c {
		t.Error("different queries produced the same fingerprint")
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(time.Minute, 10, 1<<20)
	var calls atomic.Int32

	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("payload"), nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute(ctx, "k1", compute)
		if err != nil {
			t.Fatalf("GetOrCompute() error = %v", err)
		}
		if string(got) != "payload" {
			t.Errorf("payload = %q, want %q", got, "payload")
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("compute calls = %d, want 1", n)
	}
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute, 10, 1<<20)
	var calls atomic.Int32
	sentinel := errors.New("query failed")

	compute := func(ctx context.Context) ([]byte, error) {
		if calls.Add(1) == 1 {
			return nil, sentinel
		}
		return []byte("ok"), nil
	}

	ctx := context.Background()
	if _, err := c.GetOrCompute(ctx, "k1", compute); !errors.Is(err, sentinel) {
		t.Fatalf("first call error = %v, want sentinel", err)
	}
	got, err := c.GetOrCompute(ctx, "k1", compute)
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if string(got) != "ok" {
		t.Errorf("payload = %q, want ok after failed attempt", got)
	}
}

func TestGetOrComputeCoalescesConcurrentCallers(t *testing.T) {
	c := New(time.Minute, 10, 1<<20)
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("shared"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute(context.Background(), "hot", compute)
		}(i)
	}

	// Let all callers pile up on the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("compute calls = %d, want 1 for %d concurrent callers", n, callers)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d error = %v", i, errs[i])
		}
		if string(results[i]) != "shared" {
			t.Errorf("caller %d payload = %q", i, results[i])
		}
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(20*time.Millisecond, 10, 1<<20)
	var calls atomic.Int32

	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("v"), nil
	}

	ctx := context.Background()
	if _, err := c.GetOrCompute(ctx, "k", compute); err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := c.GetOrCompute(ctx, "k", compute); err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("compute calls = %d, want 2 after TTL expiry", n)
	}
}

func TestEntryCapacityEviction(t *testing.T) {
	c := New(time.Minute, 3, 1<<20)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		if _, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
			return []byte("x"), nil
		}); err != nil {
			t.Fatalf("GetOrCompute(%s) error = %v", key, err)
		}
	}

	if got := c.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestByteBudgetEviction(t *testing.T) {
	c := New(time.Minute, 100, 100)
	ctx := context.Background()

	big := make([]byte, 60)
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("k%d", i)
		if _, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
			return big, nil
		}); err != nil {
			t.Fatalf("GetOrCompute(%s) error = %v", key, err)
		}
	}

	if got := c.Bytes(); got > 100 {
		t.Errorf("Bytes() = %d, want <= 100", got)
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1 (60-byte payloads under a 100-byte budget)", got)
	}
}

func TestFlush(t *testing.T) {
	c := New(time.Minute, 10, 1<<20)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("k%d", i)
		if _, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
			return []byte("x"), nil
		}); err != nil {
			t.Fatalf("GetOrCompute(%s) error = %v", key, err)
		}
	}

	c.Flush()
	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Flush = %d, want 0", got)
	}
	if got := c.Bytes(); got != 0 {
		t.Errorf("Bytes() after Flush = %d, want 0", got)
	}
}
