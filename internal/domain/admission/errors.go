package admission

import (
	"errors"
	"fmt"
)

// Kind identifies which admission rule rejected a check-in. Rejections are
// user-facing and recoverable; they never cause partial writes.
type Kind string

// Rejection kinds.
const (
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindOutOfRange      Kind = "out_of_range"
	KindThrottled       Kind = "throttled"
	KindComplianceLimit Kind = "compliance_limit"
)

// Scope distinguishes the two throttle windows.
type Scope string

// Throttle scopes.
const (
	ScopeGlobal Scope = "global"
	ScopeVenue  Scope = "venue"
)

// Error is a structured rule rejection. Numeric fields keep the contract
// machine-checkable instead of baking wait times into prose.
type Error struct {
	Kind Kind

	// DistanceMeters is set for KindOutOfRange.
	DistanceMeters float64

	// Scope and MinutesRemaining are set for KindThrottled.
	Scope            Scope
	MinutesRemaining int

	// WindowHours and Max are set for KindComplianceLimit.
	WindowHours int
	Max         int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return "venue not found"
	case KindForbidden:
		return "staff ineligible"
	case KindOutOfRange:
		return fmt.Sprintf("out of range: %.0fm from venue", e.DistanceMeters)
	case KindThrottled:
		return fmt.Sprintf("throttled (%s): %d minutes remaining", e.Scope, e.MinutesRemaining)
	case KindComplianceLimit:
		return fmt.Sprintf("compliance limit: max %d check-ins per %dh", e.Max, e.WindowHours)
	default:
		return "admission rejected"
	}
}

// AsRejection unwraps err into a rule rejection, or nil if err is an
// infrastructure failure (or nil). Callers must not conflate the two.
func AsRejection(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
