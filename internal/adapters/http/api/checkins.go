// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/admission"
)

// CheckinHandler handles check-in admission requests.
type CheckinHandler struct {
	deps Dependencies
}

// NewCheckinHandler creates a new check-in handler.
func NewCheckinHandler(deps Dependencies) *CheckinHandler {
	return &CheckinHandler{deps: deps}
}

// checkinRequest mirrors the POST /checkins body.
type checkinRequest struct {
	VenueID string  `json:"venue_id"`
	UserID  string  `json:"user_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (c checkinRequest) validate() error {
	switch {
	case strings.TrimSpace(c.VenueID) == "":
		return WrapKind("api.post_checkin", ErrBadRequest, errMissing("venue_id"))
	case strings.TrimSpace(c.UserID) == "":
		return WrapKind("api.post_checkin", ErrBadRequest, errMissing("user_id"))
	case c.Lat < -90 || c.Lat > 90:
		return WrapKind("api.post_checkin", ErrBadRequest, errMissing("valid lat"))
	case c.Lng < -180 || c.Lng > 180:
		return WrapKind("api.post_checkin", ErrBadRequest, errMissing("valid lng"))
	}
	return nil
}

type missingFieldError string

func errMissing(field string) error { return missingFieldError(field) }

func (e missingFieldError) Error() string { return "missing " + string(e) }

type checkinResponse struct {
	Status   string `json:"status"`
	SignalID string `json:"signal_id"`
	VenueID  string `json:"venue_id"`
}

// HandlePostCheckin handles POST /checkins requests.
func (h *CheckinHandler) HandlePostCheckin(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkin"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	signal, err := h.deps.AdmitCheckIn(r.Context(), req.VenueID, req.UserID, req.Lat, req.Lng)
	if err != nil {
		if rej := admission.AsRejection(err); rej != nil {
			writeRejection(w, rej)
			return
		}
		// Infrastructure failure: retryable, never a rule verdict.
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusCreated, checkinResponse{
		Status:   "admitted",
		SignalID: signal.ID,
		VenueID:  signal.VenueID,
	})
}

// writeRejection maps a structured rule rejection to its HTTP status and
// carries the numeric fields through untouched.
func writeRejection(w http.ResponseWriter, rej *admission.Error) {
	status := http.StatusUnprocessableEntity
	switch rej.Kind {
	case admission.KindNotFound:
		status = http.StatusNotFound
	case admission.KindForbidden:
		status = http.StatusForbidden
	case admission.KindOutOfRange:
		status = http.StatusUnprocessableEntity
	case admission.KindThrottled, admission.KindComplianceLimit:
		status = http.StatusTooManyRequests
	}

	writeJSON(w, status, errorResponse{
		Code:             "rejected",
		Message:          rej.Error(),
		Kind:             string(rej.Kind),
		DistanceMeters:   rej.DistanceMeters,
		Scope:            string(rej.Scope),
		MinutesRemaining: rej.MinutesRemaining,
		WindowHours:      rej.WindowHours,
		Max:              rej.Max,
	})
}
