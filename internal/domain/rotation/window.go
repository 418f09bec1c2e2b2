package rotation

import "time"

// Window selects a bounded display slice of items, starting at an offset
// that advances one position per rotation bucket and wrapping around the
// end. Every candidate eventually appears in the visible window as time
// advances, with no server-side pagination state.
//
// The input must already be deduplicated by the caller (e.g. one live item
// per venue). An empty input yields an empty output.
func Window[T any](items []T, size int, now time.Time, bucket time.Duration) []T {
	n := len(items)
	if n == 0 || size <= 0 {
		return nil
	}
	if size > n {
		size = n
	}

	start := int(Offset(now, bucket) % int64(n))
	if start < 0 {
		start += n
	}

	out := make([]T, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, items[(start+i)%n])
	}
	return out
}
