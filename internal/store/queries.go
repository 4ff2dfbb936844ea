package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ListQuery selects a page of indexed content. Model, when set,
// restricts results to content mapped to that model.
type ListQuery struct {
	Page     int
	PageSize int
	Model    string
}

// ListPage returns one page of content ordered by path, each item
// carrying the names of the models it is mapped to. A page past the
// end of the result set returns empty items with the true total.
func (s *Store) ListPage(ctx context.Context, q ListQuery) (*Page, error) {
	start := time.Now()

	var args []any
	where := ""
	if q.Model != "" {
		where = `WHERE c.path IN (
			SELECT content_path FROM model_content_map WHERE model_name = ?)`
		args = append(args, q.Model)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM content c " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		recordQuery("list_page", start, err)
		return nil, fmt.Errorf("counting content: %w", err)
	}

	// Model names are concatenated on a unit separator (0x1f) so names
	// containing commas survive the round trip.
	offset := (q.Page - 1) * q.PageSize
	listQuery := fmt.Sprintf(`
		SELECT c.id, c.filename, c.path, c.size, c.last_modified, c.tags,
		       c.width, c.height, c.format,
		       COALESCE(GROUP_CONCAT(m.model_name, char(31)), '')
		FROM content c
		LEFT JOIN model_content_map m ON m.content_path = c.path
		%s
		GROUP BY c.id
		ORDER BY c.path
		LIMIT ? OFFSET ?`, where)
	args = append(args, q.PageSize, offset)

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		recordQuery("list_page", start, err)
		return nil, fmt.Errorf("listing content: %w", err)
	}
	defer rows.Close()

	items := make([]PageItem, 0, q.PageSize)
	for rows.Next() {
		var item PageItem
		var lastModified int64
		var tagsJSON, modelNames string
		if err := rows.Scan(&item.ID, &item.Filename, &item.Path, &item.Size,
			&lastModified, &tagsJSON, &item.Width, &item.Height, &item.Format,
			&modelNames); err != nil {
			recordQuery("list_page", start, err)
			return nil, fmt.Errorf("scanning content row: %w", err)
		}
		item.LastModified = time.Unix(lastModified, 0)
		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			item.Tags = nil
		}
		if modelNames != "" {
			item.Models = strings.Split(modelNames, "\x1f")
		}
		items = append(items, item)
	}
	err = rows.Err()
	recordQuery("list_page", start, err)
	if err != nil {
		return nil, fmt.Errorf("iterating content rows: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + q.PageSize - 1) / q.PageSize
	}

	return &Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetContentByPath returns a single content record, or nil when the
// path is not indexed.
func (s *Store) GetContentByPath(ctx context.Context, path string) (*Content, error) {
	start := time.Now()
	var c Content
	var lastModified int64
	var tagsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, path, size, last_modified, tags, width, height, format
		FROM content WHERE path = ?`, path).
		Scan(&c.ID, &c.Filename, &c.Path, &c.Size, &lastModified, &tagsJSON,
			&c.Width, &c.Height, &c.Format)
	if err == sql.ErrNoRows {
		recordQuery("get_content_by_path", start, nil)
		return nil, nil
	}
	recordQuery("get_content_by_path", start, err)
	if err != nil {
		return nil, fmt.Errorf("reading content %q: %w", path, err)
	}
	c.LastModified = time.Unix(lastModified, 0)
	if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
		c.Tags = nil
	}
	return &c, nil
}

// CountAll returns record counts for all three collections.
func (s *Store) CountAll(ctx context.Context) (*Counts, error) {
	start := time.Now()
	var counts Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM models),
		       (SELECT COUNT(*) FROM content),
		       (SELECT COUNT(*) FROM model_content_map)`).
		Scan(&counts.Models, &counts.Content, &counts.Mappings)
	recordQuery("count_all", start, err)
	if err != nil {
		return nil, fmt.Errorf("counting collections: %w", err)
	}
	return &counts, nil
}

// VerifyIntegrity scans the mapping collection for references to
// models or content that no longer exist and returns the offending
// mappings, empty when the store is consistent.
func (s *Store) VerifyIntegrity(ctx context.Context) ([]Mapping, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.model_name, m.content_path
		FROM model_content_map m
		LEFT JOIN models mo ON mo.name = m.model_name
		LEFT JOIN content c ON c.path = m.content_path
		WHERE mo.id IS NULL OR c.id IS NULL
		ORDER BY m.model_name, m.content_path`)
	if err != nil {
		recordQuery("verify_integrity", start, err)
		return nil, fmt.Errorf("verifying integrity: %w", err)
	}
	defer rows.Close()

	var orphans []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ModelName, &m.ContentPath); err != nil {
			recordQuery("verify_integrity", start, err)
			return nil, fmt.Errorf("scanning orphan row: %w", err)
		}
		orphans = append(orphans, m)
	}
	err = rows.Err()
	recordQuery("verify_integrity", start, err)
	if err != nil {
		return nil, fmt.Errorf("iterating orphan rows: %w", err)
	}
	return orphans, nil
}
