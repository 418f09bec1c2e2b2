// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/venuestore"
)

// PulseHandler handles venue pulse requests.
type PulseHandler struct {
	deps Dependencies
}

// NewPulseHandler creates a new pulse handler.
func NewPulseHandler(deps Dependencies) *PulseHandler {
	return &PulseHandler{deps: deps}
}

// HandleGetPulse handles GET /venues/{venue_id}/pulse requests.
func (h *PulseHandler) HandleGetPulse(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pulse"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/venues/")
	venueID := strings.TrimSuffix(path, "/pulse")
	if venueID == "" || venueID == path || strings.Contains(venueID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	reading, err := h.deps.GetPulse(r.Context(), venueID)
	if err != nil {
		if errors.Is(err, venuestore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
