package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-indexer/internal/logging"
	"media-indexer/internal/media"
	"media-indexer/internal/mediatypes"
	"media-indexer/internal/metrics"
	"media-indexer/internal/scanner"
	"media-indexer/internal/store"
	"media-indexer/internal/tags"
	"media-indexer/internal/volume"
	"media-indexer/internal/workers"
)

// Options tune an indexing run.
type Options struct {
	// Truncate clears all three collections before the first volume.
	Truncate bool
	// Workers is the extraction pool size; 0 scales from CPU count.
	Workers int
	// BatchSize is the number of writes per store transaction.
	BatchSize int
	// RetryAttempts bounds retries of transient store write failures.
	RetryAttempts int
	// RetryBackoff is the base delay between retries, doubled each
	// attempt.
	RetryBackoff time.Duration
	// TagTimeout bounds a single tag extraction.
	TagTimeout time.Duration
}

// Summary reports what one indexing run did.
type Summary struct {
	RunID          string
	VolumesScanned int
	VolumesSkipped []volume.Status
	FilesScanned   int64
	Created        int64
	Updated        int64
	Unchanged      int64
	Failed         int64
	SubtreeErrors  int
	Duration       time.Duration
}

// Runner executes indexing runs against one store.
type Runner struct {
	store     *store.Store
	extractor tags.Extractor
	checker   *volume.Checker
	namer     scanner.ModelNamer
	opts      Options
}

// New assembles a Runner.
func New(s *store.Store, extractor tags.Extractor, checker *volume.Checker, namer scanner.ModelNamer, opts Options) *Runner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.TagTimeout <= 0 {
		opts.TagTimeout = 5 * time.Second
	}
	return &Runner{
		store:     s,
		extractor: extractor,
		checker:   checker,
		namer:     namer,
		opts:      opts,
	}
}

// result is one enriched file ready for the writer.
type result struct {
	entry scanner.Entry
	state scanner.ChangeState
	tags  []string
	info  *media.Info
	err   error
}

// Run indexes every reachable root. Unreachable volumes are skipped
// and reported in the summary; the run fails only when the store
// itself stops accepting writes.
func (r *Runner) Run(ctx context.Context, roots []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.New().String()}

	metrics.IndexRunsTotal.Inc()
	metrics.IndexRunning.Set(1)
	defer func() {
		metrics.IndexRunning.Set(0)
		metrics.IndexLastRunTimestamp.SetToCurrentTime()
		metrics.IndexLastRunDuration.Set(time.Since(start).Seconds())
	}()

	logging.Info("Indexing run %s starting: %d volume(s), truncate=%v",
		summary.RunID, len(roots), r.opts.Truncate)

	if r.opts.Truncate {
		if err := r.store.Truncate(ctx); err != nil {
			return nil, fmt.Errorf("truncating store: %w", err)
		}
		logging.Info("Store truncated for run %s", summary.RunID)
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status := r.checker.Check(ctx, root)
		if !status.Reachable() {
			logging.Warn("Skipping volume %s: %s", root, status.Reason)
			metrics.IndexVolumesSkipped.WithLabelValues(string(status.Reason)).Inc()
			summary.VolumesSkipped = append(summary.VolumesSkipped, status)
			continue
		}

		if err := r.indexVolume(ctx, root, summary); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", root, err)
		}
		summary.VolumesScanned++
	}

	summary.Duration = time.Since(start)
	logging.Info("Indexing run %s complete: %d scanned, %d created, %d updated, %d unchanged, %d failed, %d volume(s) skipped in %v",
		summary.RunID, summary.FilesScanned, summary.Created, summary.Updated,
		summary.Unchanged, summary.Failed, len(summary.VolumesSkipped), summary.Duration)
	return summary, nil
}

func (r *Runner) indexVolume(ctx context.Context, root string, summary *Summary) error {
	// Cancelling on writer failure unblocks the scanner and any
	// workers still waiting to send.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scan := scanner.New(root, r.namer)

	workerCount := r.opts.Workers
	if workerCount <= 0 {
		workerCount = workers.ForIO(16)
	}
	metrics.IndexWorkers.Set(float64(workerCount))

	entries := make(chan scanner.Entry, workerCount*2)
	results := make(chan result, workerCount*2)

	scanErrCh := make(chan error, 1)
	go func() {
		scanErrCh <- scan.Scan(ctx, entries)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range entries {
				res := r.enrich(ctx, entry)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	if err := r.write(ctx, results, summary); err != nil {
		return err
	}

	if err := <-scanErrCh; err != nil && err != context.Canceled {
		return fmt.Errorf("scanning: %w", err)
	}

	subtreeErrs := scan.SubtreeErrors()
	summary.SubtreeErrors += len(subtreeErrs)
	metrics.IndexSubtreeErrors.Add(float64(len(subtreeErrs)))

	seen, emitted := scan.Stats()
	logging.Info("Volume %s scanned: %d file(s) seen, %d candidate(s), %d unreadable subtree(s)",
		root, seen, emitted, len(subtreeErrs))
	return nil
}

// enrich classifies an entry against its prior record and, for new or
// updated files, extracts tags and probes image dimensions.
func (r *Runner) enrich(ctx context.Context, entry scanner.Entry) result {
	res := result{entry: entry}

	meta, err := r.store.GetContentMeta(ctx, entry.AbsPath)
	if err != nil {
		res.err = err
		return res
	}

	var prior *scanner.PriorRecord
	if meta != nil {
		prior = &scanner.PriorRecord{Size: meta.Size, ModTime: meta.LastModified}
	}
	res.state = scanner.Compare(prior, entry.Size, entry.ModTime)
	if res.state == scanner.ChangeUnchanged {
		return res
	}

	res.tags = r.extractTags(ctx, entry.AbsPath)

	if entry.Kind == mediatypes.KindImage {
		info, err := media.Probe(entry.AbsPath)
		if err != nil {
			logging.Debug("Dimension probe failed for %s: %v", entry.AbsPath, err)
		} else {
			res.info = info
		}
	}
	return res
}

func (r *Runner) extractTags(ctx context.Context, path string) []string {
	start := time.Now()
	tagCtx, cancel := context.WithTimeout(ctx, r.opts.TagTimeout)
	defer cancel()

	set, err := r.extractor.Extract(tagCtx, path)
	metrics.TagExtractionDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.TagExtractionsTotal.WithLabelValues("error").Inc()
		logging.Debug("Tag extraction failed for %s: %v", path, err)
		return nil
	case len(set) == 0:
		metrics.TagExtractionsTotal.WithLabelValues("empty").Inc()
		return []string{}
	default:
		metrics.TagExtractionsTotal.WithLabelValues("ok").Inc()
		return set.Strings()
	}
}

// write is the single consumer of enriched results. It batches store
// writes into transactions and retries transient failures.
func (r *Runner) write(ctx context.Context, results <-chan result, summary *Summary) error {
	tx, err := r.store.BeginBatch(ctx)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	txStart := time.Now()
	batched := 0

	flush := func() error {
		if err := r.store.EndBatch(tx, txStart, nil); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
		tx, err = r.store.BeginBatch(ctx)
		if err != nil {
			return fmt.Errorf("beginning batch: %w", err)
		}
		txStart = time.Now()
		batched = 0
		return nil
	}

	for res := range results {
		summary.FilesScanned++

		if res.err != nil {
			summary.Failed++
			metrics.IndexFilesProcessed.WithLabelValues("failed").Inc()
			logging.Warn("Failed to process %s: %v", res.entry.AbsPath, res.err)
			continue
		}

		if err := r.writeOne(ctx, tx, res); err != nil {
			summary.Failed++
			metrics.IndexFilesProcessed.WithLabelValues("failed").Inc()
			logging.Warn("Failed to write %s: %v", res.entry.AbsPath, err)
			continue
		}

		switch res.state {
		case scanner.ChangeNew:
			summary.Created++
			metrics.IndexFilesProcessed.WithLabelValues("created").Inc()
		case scanner.ChangeUpdated:
			summary.Updated++
			metrics.IndexFilesProcessed.WithLabelValues("updated").Inc()
		case scanner.ChangeUnchanged:
			summary.Unchanged++
			metrics.IndexFilesProcessed.WithLabelValues("unchanged").Inc()
		}

		batched++
		if batched >= r.opts.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}

		if summary.FilesScanned%1000 == 0 {
			logging.Info("Progress: %d file(s) processed (%d created, %d updated, %d unchanged)",
				summary.FilesScanned, summary.Created, summary.Updated, summary.Unchanged)
		}
	}

	if err := r.store.EndBatch(tx, txStart, ctx.Err()); err != nil {
		return fmt.Errorf("committing final batch: %w", err)
	}
	return ctx.Err()
}

// writeOne applies one result inside the current transaction,
// retrying each statement on lock contention.
func (r *Runner) writeOne(ctx context.Context, tx *sql.Tx, res result) error {
	modelName := scanner.Normalize(res.entry.ModelName)

	if err := r.retry(ctx, func() error {
		return r.store.UpsertModel(ctx, tx, modelName)
	}); err != nil {
		return err
	}

	if res.state == scanner.ChangeUnchanged {
		if err := r.retry(ctx, func() error {
			return r.store.TouchContent(ctx, tx, res.entry.AbsPath)
		}); err != nil {
			return err
		}
	} else {
		content := &store.Content{
			Filename:     filepath.Base(res.entry.AbsPath),
			Path:         res.entry.AbsPath,
			Size:         res.entry.Size,
			LastModified: res.entry.ModTime,
			Tags:         res.tags,
			Format:       mediatypes.Format(res.entry.Ext),
		}
		if res.info != nil {
			content.Width = res.info.Width
			content.Height = res.info.Height
			if res.info.Format != "" {
				content.Format = res.info.Format
			}
		}
		if err := r.retry(ctx, func() error {
			return r.store.UpsertContent(ctx, tx, content)
		}); err != nil {
			return err
		}
	}

	return r.retry(ctx, func() error {
		return r.store.UpsertMapping(ctx, tx, modelName, res.entry.AbsPath)
	})
}

// retry runs op, retrying transient store failures with doubling
// backoff up to the configured attempt budget.
func (r *Runner) retry(ctx context.Context, op func() error) error {
	backoff := r.opts.RetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || !store.IsTransient(err) || attempt >= r.opts.RetryAttempts {
			return err
		}
		metrics.StoreWriteRetries.Inc()
		logging.Debug("Retrying store write after transient failure (attempt %d): %v", attempt+1, err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}
