// Package venuestore defines the mutable venue snapshot store and errors.
//
// Venue CRUD proper lives outside the engine; this store holds the
// snapshots the gate, calculator and ranker operate on.
package venuestore

import (
	"context"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// Store provides read/write access to venue snapshots. Updates have merge
// semantics: only the fields touched by the mutation change.
type Store interface {
	// Get returns the snapshot for id. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (*model.VenueSnapshot, error)

	// Put inserts or fully replaces a snapshot.
	Put(ctx context.Context, v model.VenueSnapshot) error

	// Update applies mutate to the stored snapshot under the store lock.
	Update(ctx context.Context, id string, mutate func(*model.VenueSnapshot)) error

	// IncrementCheckIns bumps the venue's check-in counter by one.
	IncrementCheckIns(ctx context.Context, id string) error

	// SetBuzz overwrites the cached buzz. Last-writer-wins: recomputes are
	// idempotent full aggregations, so no compare-and-swap is needed.
	SetBuzz(ctx context.Context, id string, score float64, status string, at time.Time) error

	// List returns all snapshots.
	List(ctx context.Context) ([]model.VenueSnapshot, error)

	// Count returns the number of tracked venues.
	Count(ctx context.Context) int
}
