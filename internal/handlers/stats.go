package handlers

import (
	"net/http"
)

// statsResponse summarizes the indexed collections.
type statsResponse struct {
	Models   int `json:"models"`
	Content  int `json:"content"`
	Mappings int `json:"mappings"`
}

// Stats serves GET /api/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Models:   counts.Models,
		Content:  counts.Content,
		Mappings: counts.Mappings,
	})
}
