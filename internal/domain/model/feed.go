package model

import "time"

// LiveItemKind classifies entries in the compact buzz widget.
type LiveItemKind string

// Live item kinds.
const (
	LiveFlashBounty LiveItemKind = "flash_bounty"
	LiveHappyHour   LiveItemKind = "happy_hour"
	LiveUpcoming    LiveItemKind = "upcoming"
	LiveDealTag     LiveItemKind = "deal_tag"
)

// LiveItem is one candidate for the rotating buzz window. Candidates are
// deduplicated by venue before selection: a venue contributes at most one.
type LiveItem struct {
	VenueID   string       `json:"venue_id"`
	VenueName string       `json:"venue_name"`
	Kind      LiveItemKind `json:"kind"`
	StartsAt  *time.Time   `json:"starts_at,omitempty"`
	EndsAt    *time.Time   `json:"ends_at,omitempty"`
}
