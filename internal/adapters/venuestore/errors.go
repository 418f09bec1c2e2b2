package venuestore

import "errors"

// Sentinel kinds for venue store errors.
var (
	ErrNotFound  = errors.New("venue not found")
	ErrInvalidID = errors.New("invalid venue id")
)
