package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
)

// Entry is one candidate media file produced by a scan.
type Entry struct {
	AbsPath   string
	RelPath   string
	ModelName string
	Size      int64
	ModTime   time.Time
	Ext       string
	Kind      mediatypes.Kind
}

// SubtreeError records a directory that could not be read during the
// walk. The scan continues past it.
type SubtreeError struct {
	Path string
	Err  error
}

// Scanner streams candidate files from one volume root.
type Scanner struct {
	root  string
	namer ModelNamer

	filesSeen    atomic.Int64
	filesEmitted atomic.Int64
	subtreeErrs  []SubtreeError
}

// New creates a Scanner for root using the given naming rule.
func New(root string, namer ModelNamer) *Scanner {
	return &Scanner{root: root, namer: namer}
}

// Scan walks the root and sends entries to out until the tree is
// exhausted or ctx is cancelled. It closes out before returning.
// Unreadable subtrees are collected (see SubtreeErrors) and skipped;
// only a failure to read the root itself is returned as an error.
func (s *Scanner) Scan(ctx context.Context, out chan<- Entry) error {
	defer close(out)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == s.root {
				return err
			}
			logging.Warn("Skipping unreadable subtree %s: %v", path, err)
			s.subtreeErrs = append(s.subtreeErrs, SubtreeError{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// The root is scanned even when its own leaf name starts with
		// a dot; only entries beneath it are subject to the hidden skip.
		if path != s.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		// WalkDir does not follow symlinks; a symlinked file still
		// shows up as a link entry, which we do not index.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		s.filesSeen.Add(1)

		ext := mediatypes.Ext(d.Name())
		kind := mediatypes.KindOf(ext)
		if kind == mediatypes.KindOther {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("Skipping %s: %v", path, err)
			s.subtreeErrs = append(s.subtreeErrs, SubtreeError{Path: path, Err: err})
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		entry := Entry{
			AbsPath:   path,
			RelPath:   relPath,
			ModelName: s.namer.ModelName(s.root, relPath),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Ext:       ext,
			Kind:      kind,
		}

		select {
		case out <- entry:
			s.filesEmitted.Add(1)
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	return err
}

// SubtreeErrors returns the unreadable subtrees recorded by the last
// Scan. Valid once Scan has returned.
func (s *Scanner) SubtreeErrors() []SubtreeError {
	return s.subtreeErrs
}

// Stats returns how many files the last scan saw and emitted.
func (s *Scanner) Stats() (seen, emitted int64) {
	return s.filesSeen.Load(), s.filesEmitted.Load()
}
