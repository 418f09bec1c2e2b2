// Package signalstore defines the append-only signal log interface and errors.
package signalstore

import (
	"context"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// Store provides access to the append-only signal log. Signals are never
// updated or deleted by normal flow; all queries order by signal timestamp.
type Store interface {
	// Append writes one signal to the log.
	Append(ctx context.Context, s model.Signal) error

	// RecentByUser returns the user's most recent signal of the given type
	// across all venues, or nil if the user has none.
	RecentByUser(ctx context.Context, userID string, t model.SignalType) (*model.Signal, error)

	// RecentByUserAndVenue returns the user's most recent signal of the
	// given type at one venue, or nil if none exists.
	RecentByUserAndVenue(ctx context.Context, userID, venueID string, t model.SignalType) (*model.Signal, error)

	// CountByUserSince counts the user's signals of the given type with
	// timestamp >= since.
	CountByUserSince(ctx context.Context, userID string, t model.SignalType, since time.Time) (int, error)

	// ByVenue returns all signals for a venue.
	ByVenue(ctx context.Context, venueID string) ([]model.Signal, error)

	// Close releases store resources.
	Close() error
}
