// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/ranking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// AdmitCheckIn runs the eligibility gate for a prospective check-in.
	AdmitCheckIn(ctx context.Context, venueID, userID string, lat, lng float64) (*model.Signal, error)

	// GetPulse recomputes and returns a venue's current buzz.
	GetPulse(ctx context.Context, venueID string) (model.PulseReading, error)

	// RankFeed returns the ordered venue list for a feed view.
	RankFeed(ctx context.Context, mode ranking.Mode, date time.Time, userLoc *model.Coordinates) ([]model.RankedItem, error)

	// BuzzWindow returns the rotating compact-widget subset.
	BuzzWindow(ctx context.Context) ([]model.LiveItem, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	checkinHandler *CheckinHandler
	pulseHandler   *PulseHandler
	feedHandler    *FeedHandler
	buzzHandler    *BuzzHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		checkinHandler: NewCheckinHandler(deps),
		pulseHandler:   NewPulseHandler(deps),
		feedHandler:    NewFeedHandler(deps),
		buzzHandler:    NewBuzzHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/checkins", MetricsMiddleware(s.checkinHandler.HandlePostCheckin, "checkins"))
	mux.HandleFunc("/venues/", MetricsMiddleware(s.pulseHandler.HandleGetPulse, "pulse"))
	mux.HandleFunc("/feed", MetricsMiddleware(s.feedHandler.HandleGetFeed, "feed"))
	mux.HandleFunc("/buzz", MetricsMiddleware(s.buzzHandler.HandleGetBuzz, "buzz"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Structured rejection fields, present for admission rejections so the
	// contract stays machine-checkable.
	Kind             string  `json:"kind,omitempty"`
	DistanceMeters   float64 `json:"distance_meters,omitempty"`
	Scope            string  `json:"scope,omitempty"`
	MinutesRemaining int     `json:"minutes_remaining,omitempty"`
	WindowHours      int     `json:"window_hours,omitempty"`
	Max              int     `json:"max,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// Wrap annotates err with the operation name.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind creates an operation-scoped error from a sentinel kind.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind annotates err with both the operation name and a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}
