// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// BuzzHandler handles compact buzz-window requests.
type BuzzHandler struct {
	deps Dependencies
}

// NewBuzzHandler creates a new buzz handler.
func NewBuzzHandler(deps Dependencies) *BuzzHandler {
	return &BuzzHandler{deps: deps}
}

// HandleGetBuzz handles GET /buzz requests.
func (h *BuzzHandler) HandleGetBuzz(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_buzz"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	items, err := h.deps.BuzzWindow(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}
