package venuestore

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// Memory implements Store with a mutex-guarded map.
type Memory struct {
	mu     sync.RWMutex
	venues map[string]model.VenueSnapshot
}

// NewMemory creates an empty in-memory venue store.
func NewMemory() *Memory {
	return &Memory{
		venues: make(map[string]model.VenueSnapshot),
	}
}

// Get returns a copy of the snapshot for id.
func (m *Memory) Get(ctx context.Context, id string) (*model.VenueSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := v
	return &out, nil
}

// Put inserts or replaces a snapshot.
func (m *Memory) Put(ctx context.Context, v model.VenueSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.venues[v.ID] = v
	return nil
}

// Update applies mutate to the stored snapshot under the store lock.
func (m *Memory) Update(ctx context.Context, id string, mutate func(*model.VenueSnapshot)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.venues[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&v)
	m.venues[id] = v
	return nil
}

// IncrementCheckIns bumps the venue's check-in counter by one.
func (m *Memory) IncrementCheckIns(ctx context.Context, id string) error {
	return m.Update(ctx, id, func(v *model.VenueSnapshot) {
		v.CheckIns++
	})
}

// SetBuzz overwrites the cached buzz. Score is clamped to zero from below
// to hold the non-negative invariant against float drift.
func (m *Memory) SetBuzz(ctx context.Context, id string, score float64, status string, at time.Time) error {
	return m.Update(ctx, id, func(v *model.VenueSnapshot) {
		v.CurrentBuzz = model.Buzz{
			Score:       math.Max(0, score),
			Status:      status,
			LastUpdated: at,
		}
	})
}

// List returns all snapshots ordered by ID. Map iteration order would
// shuffle venues that tie on every ranking key between renders.
func (m *Memory) List(ctx context.Context) ([]model.VenueSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.VenueSnapshot, 0, len(m.venues))
	for _, v := range m.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of tracked venues.
func (m *Memory) Count(ctx context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.venues)
}
