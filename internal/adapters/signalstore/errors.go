package signalstore

import "errors"

// Sentinel kinds for signal log errors.
var (
	ErrClosed          = errors.New("signal store closed")
	ErrInvalidSignal   = errors.New("invalid signal")
	ErrDuplicateSignal = errors.New("duplicate signal id")
)
