package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-indexer/internal/scanner"
	"media-indexer/internal/store"
	"media-indexer/internal/tags"
	"media-indexer/internal/volume"
)

// staticExtractor returns the same tag set for every file.
type staticExtractor struct {
	set tags.Set
}

func (e staticExtractor) Extract(_ context.Context, _ string) (tags.Set, error) {
	return e.set, nil
}

func (e staticExtractor) Name() string { return "static" }

func newTestRunner(t *testing.T, extractor tags.Extractor, opts Options) (*Runner, *store.Store) {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	namer, err := scanner.NewNamer(scanner.RuleParentDir)
	if err != nil {
		t.Fatalf("NewNamer() error = %v", err)
	}
	return New(s, extractor, volume.NewChecker(0), namer, opts), s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Alice", "a1.jpg"), "a1")
	writeFile(t, filepath.Join(root, "Alice", "a2.png"), "a2")
	writeFile(t, filepath.Join(root, "Bob", "b1.jpg"), "b1")
	writeFile(t, filepath.Join(root, "Bob", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "h.jpg"), "skipped")
	return root
}

func TestRunIndexesTree(t *testing.T) {
	r, s := newTestRunner(t, staticExtractor{set: tags.NewSet(tags.TagRed)}, Options{})
	root := buildTree(t)

	summary, err := r.Run(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.VolumesScanned != 1 {
		t.Errorf("VolumesScanned = %d, want 1", summary.VolumesScanned)
	}
	if summary.Created != 3 {
		t.Errorf("Created = %d, want 3", summary.Created)
	}
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}

	counts, err := s.CountAll(context.Background())
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts.Models != 2 {
		t.Errorf("Models = %d, want 2 (alice, bob)", counts.Models)
	}
	if counts.Content != 3 {
		t.Errorf("Content = %d, want 3", counts.Content)
	}
	if counts.Mappings != 3 {
		t.Errorf("Mappings = %d, want 3", counts.Mappings)
	}

	page, err := s.ListPage(context.Background(), store.ListQuery{Page: 1, PageSize: 10, Model: "alice"})
	if err != nil {
		t.Fatalf("ListPage() error = %v", err)
	}
	if page.Total != 2 {
		t.Errorf("alice content = %d, want 2", page.Total)
	}
	for _, item := range page.Items {
		if len(item.Tags) != 1 || item.Tags[0] != "Red" {
			t.Errorf("Tags = %v, want [Red]", item.Tags)
		}
	}
}

func TestRunAppendIsIdempotent(t *testing.T) {
	r, s := newTestRunner(t, tags.NoopExtractor{}, Options{})
	root := buildTree(t)
	ctx := context.Background()

	if _, err := r.Run(ctx, []string{root}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	summary, err := r.Run(ctx, []string{root})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Created != 0 {
		t.Errorf("second run Created = %d, want 0", summary.Created)
	}
	if summary.Unchanged != 3 {
		t.Errorf("second run Unchanged = %d, want 3", summary.Unchanged)
	}

	counts, err := s.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts.Content != 3 || counts.Mappings != 3 {
		t.Errorf("counts after second run = %+v, want unchanged", counts)
	}
}

func TestRunDetectsUpdatedFile(t *testing.T) {
	r, s := newTestRunner(t, tags.NoopExtractor{}, Options{})
	root := buildTree(t)
	ctx := context.Background()

	if _, err := r.Run(ctx, []string{root}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	target := filepath.Join(root, "Alice", "a1.jpg")
	writeFile(t, target, "a1 but bigger now")
	// Push the mtime clearly past second granularity.
	later := time.Now().Add(5 * time.Second)
	if err := os.Chtimes(target, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	summary, err := r.Run(ctx, []string{root})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1", summary.Updated)
	}
	if summary.Unchanged != 2 {
		t.Errorf("Unchanged = %d, want 2", summary.Unchanged)
	}

	c, err := s.GetContentByPath(ctx, target)
	if err != nil {
		t.Fatalf("GetContentByPath() error = %v", err)
	}
	if c.Size != int64(len("a1 but bigger now")) {
		t.Errorf("Size = %d, want refreshed size", c.Size)
	}
}

func TestRunTruncateClearsPriorIndex(t *testing.T) {
	r, s := newTestRunner(t, tags.NoopExtractor{}, Options{})
	ctx := context.Background()

	oldRoot := t.TempDir()
	writeFile(t, filepath.Join(oldRoot, "Carol", "old.jpg"), "old")
	if _, err := r.Run(ctx, []string{oldRoot}); err != nil {
		t.Fatalf("seed Run() error = %v", err)
	}

	newRoot := buildTree(t)
	truncRunner := New(s, tags.NoopExtractor{}, volume.NewChecker(0), mustNamer(t), Options{Truncate: true})
	if _, err := truncRunner.Run(ctx, []string{newRoot}); err != nil {
		t.Fatalf("truncate Run() error = %v", err)
	}

	if c, err := s.GetContentByPath(ctx, filepath.Join(oldRoot, "Carol", "old.jpg")); err != nil {
		t.Fatalf("GetContentByPath() error = %v", err)
	} else if c != nil {
		t.Error("old record survived a truncate run")
	}

	counts, err := s.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts.Content != 3 {
		t.Errorf("Content = %d, want 3 from the new tree only", counts.Content)
	}
}

func TestRunTruncateWithNoVolumes(t *testing.T) {
	r, s := newTestRunner(t, tags.NoopExtractor{}, Options{})
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dana", "d.jpg"), "d")
	if _, err := r.Run(ctx, []string{root}); err != nil {
		t.Fatalf("seed Run() error = %v", err)
	}

	truncRunner := New(s, tags.NoopExtractor{}, volume.NewChecker(0), mustNamer(t), Options{Truncate: true})
	if _, err := truncRunner.Run(ctx, nil); err != nil {
		t.Fatalf("empty truncate Run() error = %v", err)
	}

	counts, err := s.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if counts.Models != 0 || counts.Content != 0 || counts.Mappings != 0 {
		t.Errorf("counts = %+v, want all collections empty", counts)
	}
}

func mustNamer(t *testing.T) scanner.ModelNamer {
	t.Helper()
	namer, err := scanner.NewNamer(scanner.RuleParentDir)
	if err != nil {
		t.Fatalf("NewNamer() error = %v", err)
	}
	return namer
}

func TestRunSkipsUnreachableVolume(t *testing.T) {
	r, _ := newTestRunner(t, tags.NoopExtractor{}, Options{})
	root := buildTree(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	summary, err := r.Run(context.Background(), []string{missing, root})
	if err != nil {
		t.Fatalf("Run() error = %v (a dead volume must not fail the run)", err)
	}

	if summary.VolumesScanned != 1 {
		t.Errorf("VolumesScanned = %d, want 1", summary.VolumesScanned)
	}
	if len(summary.VolumesSkipped) != 1 {
		t.Fatalf("VolumesSkipped = %d, want 1", len(summary.VolumesSkipped))
	}
	if summary.VolumesSkipped[0].Reason != volume.ReasonNotMounted {
		t.Errorf("skip reason = %q, want not-mounted", summary.VolumesSkipped[0].Reason)
	}
	if summary.Created != 3 {
		t.Errorf("Created = %d, want 3 from the reachable volume", summary.Created)
	}
}

func TestRunCountsSubtreeErrors(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("Running as root; directory permissions are not enforced")
	}

	r, s := newTestRunner(t, tags.NoopExtractor{}, Options{})
	root := buildTree(t)
	locked := filepath.Join(root, "Locked")
	writeFile(t, filepath.Join(locked, "l.jpg"), "l")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	summary, err := r.Run(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Run() error = %v (an unreadable subtree must not fail the run)", err)
	}

	if summary.SubtreeErrors != 1 {
		t.Errorf("SubtreeErrors = %d, want 1", summary.SubtreeErrors)
	}
	if summary.Created != 3 {
		t.Errorf("Created = %d, want 3 from the readable subtrees", summary.Created)
	}

	if c, err := s.GetContentByPath(context.Background(), filepath.Join(locked, "l.jpg")); err != nil {
		t.Fatalf("GetContentByPath() error = %v", err)
	} else if c != nil {
		t.Error("record leaked from unreadable subtree")
	}
}

func TestRunModelNameNormalization(t *testing.T) {
	r, s := newTestRunner(t, tags.NoopExtractor{}, Options{})
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Alice Smith", "a.jpg"), "a")

	if _, err := r.Run(context.Background(), []string{root}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	page, err := s.ListPage(context.Background(), store.ListQuery{Page: 1, PageSize: 10, Model: "alice smith"})
	if err != nil {
		t.Fatalf("ListPage() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("lookup by normalized name = %d records, want 1", page.Total)
	}
}
