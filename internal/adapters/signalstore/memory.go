package signalstore

import (
	"context"
	"sync"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// Memory implements Store with per-user and per-venue indexes. Suitable for
// tests and single-process deployments; the log grows without bound.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]struct{}
	byUser  map[string][]model.Signal
	byVenue map[string][]model.Signal
	closed  bool
}

// NewMemory creates an empty in-memory signal log.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]struct{}),
		byUser:  make(map[string][]model.Signal),
		byVenue: make(map[string][]model.Signal),
	}
}

// Append writes one signal to the log.
func (m *Memory) Append(ctx context.Context, s model.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ID == "" || s.VenueID == "" || s.UserID == "" || !s.Type.Valid() {
		return ErrInvalidSignal
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, exists := m.byID[s.ID]; exists {
		return ErrDuplicateSignal
	}
	m.byID[s.ID] = struct{}{}
	m.byUser[s.UserID] = append(m.byUser[s.UserID], s)
	m.byVenue[s.VenueID] = append(m.byVenue[s.VenueID], s)
	return nil
}

// RecentByUser returns the user's most recent signal of type t, or nil.
func (m *Memory) RecentByUser(ctx context.Context, userID string, t model.SignalType) (*model.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return latest(m.byUser[userID], func(s model.Signal) bool {
		return s.Type == t
	}), nil
}

// RecentByUserAndVenue returns the user's most recent signal of type t at
// venueID, or nil.
func (m *Memory) RecentByUserAndVenue(ctx context.Context, userID, venueID string, t model.SignalType) (*model.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return latest(m.byUser[userID], func(s model.Signal) bool {
		return s.Type == t && s.VenueID == venueID
	}), nil
}

// CountByUserSince counts the user's signals of type t at or after since.
func (m *Memory) CountByUserSince(ctx context.Context, userID string, t model.SignalType, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	count := 0
	for _, s := range m.byUser[userID] {
		if s.Type == t && !s.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

// ByVenue returns all signals for a venue.
func (m *Memory) ByVenue(ctx context.Context, venueID string) ([]model.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	src := m.byVenue[venueID]
	out := make([]model.Signal, len(src))
	copy(out, src)
	return out, nil
}

// Close marks the store closed. Further operations return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// latest scans for the matching signal with the greatest timestamp.
// Insertion order is not trusted; business ordering is by timestamp.
func latest(signals []model.Signal, match func(model.Signal) bool) *model.Signal {
	var best *model.Signal
	for i := range signals {
		s := signals[i]
		if !match(s) {
			continue
		}
		if best == nil || s.Timestamp.After(best.Timestamp) {
			best = &signals[i]
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}
