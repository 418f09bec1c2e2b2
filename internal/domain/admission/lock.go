package admission

import (
	"hash/fnv"
	"sync"
)

// lockStripes must be a power of two for cheap masking.
const lockStripes = 64

// userLocks serializes admissions per user with a striped mutex set. The
// compliance cap and cooldown rules read then write; without serialization
// two concurrent admissions for one user could both pass the cap.
type userLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *userLocks) lock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	m := &l.stripes[h.Sum32()&(lockStripes-1)]
	m.Lock()
	return m
}
