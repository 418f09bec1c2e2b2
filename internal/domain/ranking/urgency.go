package ranking

import (
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// Urgency sentinels. Lower sorts first.
const (
	// bountyUrgency pins venues with an active flash bounty to the top of
	// the deals view.
	bountyUrgency = -3000.0
	// upcomingBase offsets upcoming happy-hour windows behind all active ones.
	upcomingBase = 5000.0
	// dealsExcluded ranks venues with no deal content last in the deals view.
	dealsExcluded = 10000.0
	// weeklyOnlySentinel ranks venues with only untimed entries behind all
	// timed events for the selected date.
	weeklyOnlySentinel = 100000.0
	// noEventSentinel ranks venues with nothing scheduled last.
	noEventSentinel = 200000.0
)

// dealUrgency scores a venue for the deals view at now. Active flash
// bounties always come first; otherwise the soonest-ending active
// happy-hour window ranks first, then upcoming windows by time to start.
func dealUrgency(v *model.VenueSnapshot, now time.Time) float64 {
	if v.FlashBounty.ActiveAt(now) {
		return bountyUrgency
	}

	bestActive := -1.0
	bestUpcoming := -1.0
	for _, hh := range v.HappyHours {
		switch {
		case !now.Before(hh.StartsAt) && now.Before(hh.EndsAt):
			untilEnd := hh.EndsAt.Sub(now).Minutes()
			if bestActive < 0 || untilEnd < bestActive {
				bestActive = untilEnd
			}
		case now.Before(hh.StartsAt):
			untilStart := hh.StartsAt.Sub(now).Minutes()
			if bestUpcoming < 0 || untilStart < bestUpcoming {
				bestUpcoming = untilStart
			}
		}
	}

	if bestActive >= 0 {
		return bestActive
	}
	if bestUpcoming >= 0 {
		return upcomingBase + bestUpcoming
	}
	return dealsExcluded
}

// eventUrgency scores a venue for the events view on the selected date.
// Dated entries match on the calendar date, weekly entries on the weekday.
// The earliest timed start wins; untimed matches fall back to a sentinel.
func eventUrgency(v *model.VenueSnapshot, date time.Time) float64 {
	day := date.Format("2006-01-02")
	weekday := date.Weekday()

	earliest := -1
	untimed := false
	for _, e := range v.SpecialEvents {
		matched := false
		if e.Weekly {
			matched = e.Weekday == weekday
		} else {
			matched = e.Date == day
		}
		if !matched {
			continue
		}
		if e.StartMinutes < 0 {
			untimed = true
			continue
		}
		if earliest < 0 || e.StartMinutes < earliest {
			earliest = e.StartMinutes
		}
	}

	switch {
	case earliest >= 0:
		return float64(earliest)
	case untimed:
		return weeklyOnlySentinel
	default:
		return noEventSentinel
	}
}
