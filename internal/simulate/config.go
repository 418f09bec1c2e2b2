package simulate

import "time"

// Config holds configuration for a pulse simulation run.
type Config struct {
	Addr       string        // Listen address for the embedded engine
	NumVenues  int           // Number of venues to seed
	NumUsers   int           // Number of simulated users
	NumCheckins int          // Number of check-in attempts to submit
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// checkinRequest mirrors the engine's POST /checkins body.
type checkinRequest struct {
	VenueID string  `json:"venue_id"`
	UserID  string  `json:"user_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// checkinResponse mirrors the engine's 201 admission body.
type checkinResponse struct {
	Status   string `json:"status"`
	SignalID string `json:"signal_id"`
	VenueID  string `json:"venue_id"`
}

// rejectionResponse mirrors the engine's structured rejection body.
type rejectionResponse struct {
	Code string `json:"code"`
	Kind string `json:"kind"`
}

// pulseResponse mirrors GET /venues/{id}/pulse.
type pulseResponse struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

// Stats holds simulation statistics.
type Stats struct {
	VenuesSeeded      int
	CheckinsSubmitted int
	CheckinsAdmitted  int
	CheckinsRejected  int
	CheckinsFailed    int
	RejectionsByKind  map[string]int
	PulsesPolled      int
	FeedItems         int
	BuzzItems         int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
