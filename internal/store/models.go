package store

import "time"

// Model is a named subject derived from directory structure. Models
// are created on first encounter and removed only by truncation.
type Model struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Content is one indexed media file. Path is the natural key:
// re-indexing the same path updates the record in place.
type Content struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	Tags         []string  `json:"tags"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Format       string    `json:"format,omitempty"`
}

// Mapping links one model to one content item. The (model, path) pair
// is unique.
type Mapping struct {
	ModelName   string `json:"modelName"`
	ContentPath string `json:"contentPath"`
}

// ContentMeta is the size+mtime of a stored content record, used for
// unchanged-skip comparison without loading the full row.
type ContentMeta struct {
	Size         int64
	LastModified time.Time
}

// PageItem is one content row of a serving page, joined with the
// model names it maps to.
type PageItem struct {
	Content
	Models []string `json:"models"`
}

// Page is one page of content in stable path order.
type Page struct {
	Items      []PageItem `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// Counts reports the size of each collection.
type Counts struct {
	Models   int `json:"models"`
	Content  int `json:"content"`
	Mappings int `json:"mappings"`
}
