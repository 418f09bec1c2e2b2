// Package model contains domain models passed between layers.
package model

import "time"

// SignalType classifies the engagement events a venue can receive.
type SignalType string

// Signal kinds. The zero value is invalid on purpose so unclassified
// signals cannot slip through scoring.
const (
	SignalCheckIn     SignalType = "check_in"
	SignalVibeReport  SignalType = "vibe_report"
	SignalPhotoUpload SignalType = "photo_upload"
)

// Valid reports whether t is a known signal type.
func (t SignalType) Valid() bool {
	switch t {
	case SignalCheckIn, SignalVibeReport, SignalPhotoUpload:
		return true
	default:
		return false
	}
}

// VerificationMethod records how a check-in was validated, when known.
type VerificationMethod string

// Verification methods.
const (
	VerifyGeofence VerificationMethod = "geofence"
	VerifyManual   VerificationMethod = "manual"
)

// Signal is an immutable engagement event. Once appended to the log it is
// never mutated or deleted by normal flow; business ordering is by
// Timestamp, not insertion order.
type Signal struct {
	ID           string
	VenueID      string
	UserID       string
	Type         SignalType
	Timestamp    time.Time
	Verification VerificationMethod // optional
}
