package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"media-indexer/internal/cache"
	"media-indexer/internal/logging"
	"media-indexer/internal/store"
)

// maxInlineFileSize caps how large a file include_data will embed.
// Anything bigger gets its metadata only.
const maxInlineFileSize = 20 << 20

// imageItem is one element of the listing response.
type imageItem struct {
	ID           int64    `json:"id"`
	Filename     string   `json:"filename"`
	Path         string   `json:"path"`
	Size         int64    `json:"size"`
	LastModified string   `json:"last_modified"`
	Tags         []string `json:"tags"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	Format       string   `json:"format,omitempty"`
	Models       []string `json:"models"`
	Data         string   `json:"data,omitempty"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Images     []imageItem `json:"images"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

// listParams are the validated query parameters of one listing
// request.
type listParams struct {
	page             int
	perPage          int
	model            string
	includeData      bool
	includeThumbnail bool
}

func (h *Handlers) parseListParams(r *http.Request) (listParams, error) {
	q := r.URL.Query()
	p := listParams{
		page:    1,
		perPage: h.opts.DefaultPageSize,
		model:   q.Get("model"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, fmt.Errorf("page must be a positive integer")
		}
		p.page = page
	}

	if raw := q.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return p, fmt.Errorf("per_page must be a positive integer")
		}
		p.perPage = perPage
	}
	// Clamp rather than reject oversized page sizes.
	if p.perPage > h.opts.MaxPageSize {
		p.perPage = h.opts.MaxPageSize
	}

	p.includeData = parseBool(q.Get("include_data"))
	p.includeThumbnail = parseBool(q.Get("include_thumbnail"))
	return p, nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

func (p listParams) cacheKey() string {
	return cache.Fingerprint(map[string]string{
		"page":              strconv.Itoa(p.page),
		"per_page":          strconv.Itoa(p.perPage),
		"model":             p.model,
		"include_data":      strconv.FormatBool(p.includeData),
		"include_thumbnail": strconv.FormatBool(p.includeThumbnail),
	})
}

// ListImages serves GET /api/images.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.cache.GetOrCompute(r.Context(), params.cacheKey(), func(ctx context.Context) ([]byte, error) {
		return h.buildListing(ctx, params)
	})
	if err != nil {
		logging.Error("Listing failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	writeJSONBytes(w, http.StatusOK, payload)
}

func (h *Handlers) buildListing(ctx context.Context, params listParams) ([]byte, error) {
	page, err := h.store.ListPage(ctx, store.ListQuery{
		Page:     params.page,
		PageSize: params.perPage,
		Model:    params.model,
	})
	if err != nil {
		return nil, err
	}

	items := make([]imageItem, 0, len(page.Items))
	for _, rec := range page.Items {
		item := imageItem{
			ID:           rec.ID,
			Filename:     rec.Filename,
			Path:         rec.Path,
			Size:         rec.Size,
			LastModified: rec.LastModified.UTC().Format(time.RFC3339),
			Tags:         rec.Tags,
			Width:        rec.Width,
			Height:       rec.Height,
			Format:       rec.Format,
			Models:       rec.Models,
		}
		if item.Tags == nil {
			item.Tags = []string{}
		}
		if item.Models == nil {
			item.Models = []string{}
		}

		if params.includeData {
			item.Data = h.inlineData(rec)
		}
		if params.includeThumbnail {
			item.Thumbnail = h.inlineThumbnail(rec)
		}
		items = append(items, item)
	}

	return json.Marshal(listResponse{
		Images:     items,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PageSize,
		TotalPages: page.TotalPages,
	})
}

// inlineData reads the file and base64-encodes it. A file that has
// vanished or grown too large since indexing produces an empty field,
// not an error.
func (h *Handlers) inlineData(rec store.PageItem) string {
	if rec.Size > maxInlineFileSize {
		logging.Debug("Skipping inline data for %s: %d bytes exceeds limit", rec.Path, rec.Size)
		return ""
	}
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		logging.Debug("Skipping inline data for %s: %v", rec.Path, err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

func (h *Handlers) inlineThumbnail(rec store.PageItem) string {
	thumb, err := h.thumbnailer.Render(rec.Path)
	if err != nil {
		logging.Debug("Skipping thumbnail for %s: %v", rec.Path, err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(thumb)
}
