// Package ranking produces the ordered venue list for a feed view using a
// stable multi-key comparator. Stateless and pure given its inputs; an
// empty or malformed venue list yields an empty ranked output, and venues
// missing fields take the least-favorable rank instead of erroring.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/geo"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/rotation"
)

// Mode selects which feed view is being ranked.
type Mode string

// Feed modes.
const (
	ModeDefault Mode = "default"
	ModeDeals   Mode = "deals"
	ModeEvents  Mode = "events"
)

// Valid reports whether m is a known feed mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDefault, ModeDeals, ModeEvents:
		return true
	default:
		return false
	}
}

// defaultProximityMi is the soft distance-first threshold for the default feed.
const defaultProximityMi = 15.0

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithProximityThreshold sets the distance-first threshold in miles.
func WithProximityThreshold(miles float64) Option {
	return func(r *Ranker) {
		if miles > 0 {
			r.proximityMi = miles
		}
	}
}

// WithRotationBucket sets the tie-break rotation interval.
func WithRotationBucket(d time.Duration) Option {
	return func(r *Ranker) {
		if d > 0 {
			r.bucket = d
		}
	}
}

// Ranker ranks venue snapshots for a feed view.
type Ranker struct {
	proximityMi float64
	bucket      time.Duration
}

// NewRanker creates a Ranker with configuration options.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		proximityMi: defaultProximityMi,
		bucket:      rotation.DefaultBucket,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Rank orders venues for the given view. userLoc may be nil; date selects
// the day for events mode. The sort is stable, so equal keys preserve
// input order.
func (r *Ranker) Rank(venues []model.VenueSnapshot, mode Mode, now time.Time, userLoc *model.Coordinates, date time.Time) []model.RankedItem {
	if len(venues) == 0 {
		return nil
	}

	items := make([]model.RankedItem, 0, len(venues))
	for _, v := range venues {
		item := model.RankedItem{
			Venue:  v,
			TieKey: rotation.TieKey(v.ID, now, r.bucket),
		}
		if userLoc != nil && v.Location != nil {
			d := geo.Distance(*userLoc, *v.Location)
			item.DistanceMeters = &d
		}
		switch mode {
		case ModeDeals:
			item.Urgency = dealUrgency(&v, now)
		case ModeEvents:
			item.Urgency = eventUrgency(&v, date)
		}
		items = append(items, item)
	}

	thresholdM := geo.MilesToMeters(r.proximityMi)
	sort.SliceStable(items, func(i, j int) bool {
		return r.less(&items[i], &items[j], mode, now, thresholdM)
	})

	return items
}

// less evaluates the comparator stages in strict priority order; each
// stage breaks ties for the previous one.
func (r *Ranker) less(a, b *model.RankedItem, mode Mode, now time.Time, thresholdM float64) bool {
	// Stage 1: soft proximity rule. Only the default view with a known
	// viewer location sorts by distance, and only when either compared
	// venue is within the threshold; otherwise fall through.
	if mode == ModeDefault {
		da, db := effectiveDistance(a), effectiveDistance(b)
		if (da <= thresholdM || db <= thresholdM) && da != db {
			return da < db
		}
	}

	// Stage 2: mode-specific urgency.
	if mode == ModeDeals || mode == ModeEvents {
		if a.Urgency != b.Urgency {
			return a.Urgency < b.Urgency
		}
		return false
	}

	// Stage 3: default-mode structural priority.
	aBounty := a.Venue.FlashBounty.ActiveAt(now)
	bBounty := b.Venue.FlashBounty.ActiveAt(now)
	if aBounty != bBounty {
		return aBounty
	}

	if a.Venue.PaidLeagueMember != b.Venue.PaidLeagueMember {
		return a.Venue.PaidLeagueMember
	}
	if a.Venue.PaidLeagueMember && b.Venue.PaidLeagueMember && a.TieKey != b.TieKey {
		// Rotation fairness: the winner changes once per bucket, so tied
		// league members share top placement over time.
		return a.TieKey < b.TieKey
	}

	if ar, br := a.Venue.State.RankOrder(), b.Venue.State.RankOrder(); ar != br {
		return ar < br
	}

	return a.Venue.Vibe.RankOrder() < b.Venue.Vibe.RankOrder()
}

// effectiveDistance treats an unknown distance as infinitely far, which
// pushes venues without a location behind any located venue under the
// proximity rule.
func effectiveDistance(item *model.RankedItem) float64 {
	if item.DistanceMeters == nil {
		return math.Inf(1)
	}
	return *item.DistanceMeters
}
