package model

import "time"

// Coordinates is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Buzz is a venue's cached decayed engagement score. Score is always >= 0.
// Status lags real time between recomputes; LastUpdated says by how much.
type Buzz struct {
	Score       float64   `json:"score"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

// VibeStatus is the operator/crowd-reported room state. It is a separate
// vocabulary from the computed buzz status and is only consulted by the
// default-mode feed comparator.
type VibeStatus string

// Vibe states, best to worst for ranking purposes.
const (
	VibePacked  VibeStatus = "packed"
	VibeBuzzing VibeStatus = "buzzing"
	VibeLively  VibeStatus = "lively"
	VibeChill   VibeStatus = "chill"
	VibeDead    VibeStatus = "dead"
)

// RankOrder returns the comparator rank for a vibe; lower sorts first.
// Lively and chill are deliberately tied.
func (v VibeStatus) RankOrder() int {
	switch v {
	case VibePacked:
		return 0
	case VibeBuzzing:
		return 1
	case VibeLively, VibeChill:
		return 2
	case VibeDead:
		return 3
	default:
		return 4
	}
}

// OperationalState is whether a venue is currently serving.
type OperationalState string

// Operational states.
const (
	StateOpen     OperationalState = "open"
	StateLastCall OperationalState = "last_call"
	StateClosed   OperationalState = "closed"
)

// RankOrder returns the comparator rank for an operational state.
func (s OperationalState) RankOrder() int {
	switch s {
	case StateOpen:
		return 0
	case StateLastCall:
		return 1
	case StateClosed:
		return 2
	default:
		return 3
	}
}

// TierConfig captures a venue's platform tier entitlements.
type TierConfig struct {
	DirectoryListed bool `json:"directory_listed"`
	LeagueEligible  bool `json:"league_eligible"`
}

// FlashBounty is a time-bounded promotional incentive with top display
// priority while active.
type FlashBounty struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ActiveAt reports whether the bounty is live at t.
func (b *FlashBounty) ActiveAt(t time.Time) bool {
	if b == nil {
		return false
	}
	return !t.Before(b.StartsAt) && t.Before(b.EndsAt)
}

// HappyHour is a concrete promotional window.
type HappyHour struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// SpecialEvent is a scheduled venue event. Dated entries carry a calendar
// date; weekly entries recur on a weekday and may be untimed.
type SpecialEvent struct {
	Name string `json:"name"`
	// Date in "2006-01-02" form for one-off events; empty for weekly.
	Date string `json:"date,omitempty"`
	// Weekday for weekly entries.
	Weekday time.Weekday `json:"weekday,omitempty"`
	Weekly  bool         `json:"weekly"`
	// StartMinutes is minutes from midnight; -1 means untimed.
	StartMinutes int `json:"start_minutes"`
}

// VenueSnapshot is the mutable venue record the engine reads and updates.
// CurrentBuzz is only written by pulse recomputes, always as a full
// recompute from the signal log, so last-writer-wins is safe.
type VenueSnapshot struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Location    *Coordinates     `json:"location,omitempty"`
	OwnerID     string           `json:"owner_id,omitempty"`
	ManagerIDs  []string         `json:"manager_ids,omitempty"`
	CheckIns    int64            `json:"check_ins"`
	CurrentBuzz Buzz             `json:"current_buzz"`
	Vibe        VibeStatus       `json:"vibe,omitempty"`
	State       OperationalState `json:"state,omitempty"`

	PaidLeagueMember bool       `json:"paid_league_member"`
	Tier             TierConfig `json:"tier"`

	FlashBounty   *FlashBounty   `json:"flash_bounty,omitempty"`
	HappyHours    []HappyHour    `json:"happy_hours,omitempty"`
	SpecialEvents []SpecialEvent `json:"special_events,omitempty"`
	DealEndsIn    *time.Duration `json:"deal_ends_in,omitempty"`
}

// Staff reports whether userID owns or manages the venue.
func (v *VenueSnapshot) Staff(userID string) bool {
	if v.OwnerID != "" && v.OwnerID == userID {
		return true
	}
	for _, id := range v.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// RankedItem is a venue augmented with render-time sort keys. Never persisted.
type RankedItem struct {
	Venue VenueSnapshot `json:"venue"`
	// DistanceMeters is nil when the viewer location or venue location is unknown.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Urgency        float64  `json:"urgency"`
	TieKey         int      `json:"tie_key"`
}

// PulseReading is the result of a pulse recompute.
type PulseReading struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}
