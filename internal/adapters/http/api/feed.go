// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/ranking"
)

// FeedHandler handles ranked feed requests.
type FeedHandler struct {
	deps Dependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

// HandleGetFeed handles GET /feed?mode=&date=&lat=&lng= requests.
// mode defaults to "default"; date defaults to today and only matters for
// the events view; lat/lng are optional and enable the proximity rule.
func (h *FeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_feed"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()

	mode := ranking.Mode(q.Get("mode"))
	if mode == "" {
		mode = ranking.ModeDefault
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	// A zero date means "today"; RankFeed resolves it against the service
	// clock so the handler never reads wall time itself.
	var date time.Time
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		date = parsed
	}

	var userLoc *model.Coordinates
	if latRaw, lngRaw := q.Get("lat"), q.Get("lng"); latRaw != "" && lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		userLoc = &model.Coordinates{Lat: lat, Lng: lng}
	}

	items, err := h.deps.RankFeed(r.Context(), mode, date, userLoc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}
