package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UpsertModel inserts a model if it does not already exist. The
// NOCASE unique index makes "Alice" and "alice" the same model.
func (s *Store) UpsertModel(ctx context.Context, tx *sql.Tx, name string) error {
	start := time.Now()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO models (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	recordQuery("upsert_model", start, err)
	if err != nil {
		return fmt.Errorf("upserting model %q: %w", name, err)
	}
	return nil
}

// GetContentMeta returns the stored size and modification time for a
// path, or (nil, nil) when the path has never been indexed.
func (s *Store) GetContentMeta(ctx context.Context, path string) (*ContentMeta, error) {
	start := time.Now()
	var meta ContentMeta
	var lastModified int64
	err := s.db.QueryRowContext(ctx,
		`SELECT size, last_modified FROM content WHERE path = ?`, path).
		Scan(&meta.Size, &lastModified)
	if err == sql.ErrNoRows {
		recordQuery("get_content_meta", start, nil)
		return nil, nil
	}
	recordQuery("get_content_meta", start, err)
	if err != nil {
		return nil, fmt.Errorf("reading content meta for %q: %w", path, err)
	}
	meta.LastModified = time.Unix(lastModified, 0)
	return &meta, nil
}

// UpsertContent inserts a content record or, when the path already
// exists, refreshes its size, modification time, tags, dimensions and
// format.
func (s *Store) UpsertContent(ctx context.Context, tx *sql.Tx, c *Content) error {
	start := time.Now()
	tagsJSON, err := json.Marshal(c.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags for %q: %w", c.Path, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content (filename, path, size, last_modified, tags, width, height, format)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			size = excluded.size,
			last_modified = excluded.last_modified,
			tags = excluded.tags,
			width = excluded.width,
			height = excluded.height,
			format = excluded.format,
			updated_at = strftime('%s', 'now')`,
		c.Filename, c.Path, c.Size, c.LastModified.Unix(), string(tagsJSON),
		c.Width, c.Height, c.Format)
	recordQuery("upsert_content", start, err)
	if err != nil {
		return fmt.Errorf("upserting content %q: %w", c.Path, err)
	}
	return nil
}

// TouchContent bumps updated_at for an unchanged file so stale-record
// sweeps can distinguish files still present on disk.
func (s *Store) TouchContent(ctx context.Context, tx *sql.Tx, path string) error {
	start := time.Now()
	_, err := tx.ExecContext(ctx,
		`UPDATE content SET updated_at = strftime('%s', 'now') WHERE path = ?`, path)
	recordQuery("touch_content", start, err)
	if err != nil {
		return fmt.Errorf("touching content %q: %w", path, err)
	}
	return nil
}

// UpsertMapping links a model to a content path. Both sides must
// already exist; a missing side returns ErrIntegrity rather than
// silently creating a dangling reference.
func (s *Store) UpsertMapping(ctx context.Context, tx *sql.Tx, modelName, contentPath string) error {
	start := time.Now()

	var exists int
	err := tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM models WHERE name = ?)
		     * (SELECT COUNT(*) FROM content WHERE path = ?)`,
		modelName, contentPath).Scan(&exists)
	if err != nil {
		recordQuery("upsert_mapping", start, err)
		return fmt.Errorf("checking mapping endpoints: %w", err)
	}
	if exists == 0 {
		recordQuery("upsert_mapping", start, ErrIntegrity)
		return fmt.Errorf("mapping %q -> %q: %w", modelName, contentPath, ErrIntegrity)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO model_content_map (model_name, content_path) VALUES (?, ?)
		ON CONFLICT(model_name, content_path) DO NOTHING`,
		modelName, contentPath)
	recordQuery("upsert_mapping", start, err)
	if err != nil {
		return fmt.Errorf("upserting mapping %q -> %q: %w", modelName, contentPath, err)
	}
	return nil
}

// Truncate deletes all three collections in a single transaction, so
// a failure part way through leaves the previous index intact.
func (s *Store) Truncate(ctx context.Context) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		recordQuery("truncate", start, err)
		return fmt.Errorf("beginning truncate: %w", err)
	}

	for _, table := range []string{"model_content_map", "content", "models"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			recordQuery("truncate", start, err)
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("truncating %s: %w (rollback also failed: %v)", table, err, rbErr)
			}
			return fmt.Errorf("truncating %s: %w", table, err)
		}
	}

	err = tx.Commit()
	recordQuery("truncate", start, err)
	if err != nil {
		return fmt.Errorf("committing truncate: %w", err)
	}
	return nil
}
