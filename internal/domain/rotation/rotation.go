// Package rotation produces deterministic, time-evolving tie-breaks so
// tied entities share top placement instead of one monopolizing it. The
// same (id, now) pair always yields the same key, which keeps the
// mechanism independently testable.
package rotation

import "time"

// DefaultBucket is how often tie-breaks advance.
const DefaultBucket = 5 * time.Minute

// tieKeyMod bounds tie keys to [0, 100).
const tieKeyMod = 100

// Offset returns the rotation bucket index for now: floor(unixMillis / bucket).
// Pure function of wall-clock time; nothing is stored between renders.
func Offset(now time.Time, bucket time.Duration) int64 {
	if bucket <= 0 {
		bucket = DefaultBucket
	}
	return now.UnixMilli() / bucket.Milliseconds()
}

// StableHash is a fixed, order-independent hash over the id's bytes.
func StableHash(id string) int64 {
	var sum int64
	for i := 0; i < len(id); i++ {
		sum += int64(id[i])
	}
	return sum
}

// TieKey maps (id, now) to a deterministic value in [0, 100) that changes
// exactly once per bucket interval. Compared ascending.
func TieKey(id string, now time.Time, bucket time.Duration) int {
	key := (StableHash(id) + Offset(now, bucket)) % tieKeyMod
	if key < 0 {
		key += tieKeyMod
	}
	return int(key)
}
