package simulate

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
)

// Downtown Olympia anchor for generated venue coordinates.
const (
	anchorLat = 47.0379
	anchorLng = -122.9007

	// Roughly one degree of latitude per 111 km; venues scatter within ~2 km.
	venueScatterDeg = 0.02

	// Users either stand inside the 100 m geofence or well outside it.
	insideJitterDeg  = 0.0005
	outsideOffsetDeg = 0.01

	randomFloatDivisor = 1_000_000
	venueKindDivisor   = 4
)

// Venue kind cases for seed variety.
const (
	caseQuietVenue  = 0
	caseDealVenue   = 1
	caseEventVenue  = 2
	caseLeagueVenue = 3
)

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateVenues seeds numVenues snapshots scattered around the anchor
// point, with a mix of plain, deal-running, event-hosting and league venues.
func generateVenues(ctx context.Context, numVenues int, now time.Time) []model.VenueSnapshot {
	logger.Get().Info(ctx, "generating venues", logger.Int("numVenues", numVenues))

	venues := make([]model.VenueSnapshot, numVenues)
	for i := range venues {
		id := "venue-" + strconv.Itoa(i)
		loc := &model.Coordinates{
			Lat: anchorLat + (randomFloat()-0.5)*venueScatterDeg,
			Lng: anchorLng + (randomFloat()-0.5)*venueScatterDeg,
		}
		v := model.VenueSnapshot{
			ID:       id,
			Name:     "Venue " + strconv.Itoa(i),
			Location: loc,
			State:    model.StateOpen,
			Vibe:     model.VibeChill,
			Tier:     model.TierConfig{DirectoryListed: true},
		}

		kind, _ := rand.Int(rand.Reader, big.NewInt(venueKindDivisor))
		switch kind.Int64() {
		case caseDealVenue:
			v.HappyHours = []model.HappyHour{{
				StartsAt: now.Add(-30 * time.Minute),
				EndsAt:   now.Add(90 * time.Minute),
			}}
		case caseEventVenue:
			v.SpecialEvents = []model.SpecialEvent{{
				Name:         "Trivia Night",
				Weekday:      now.Weekday(),
				Weekly:       true,
				StartMinutes: 19 * 60,
			}}
		case caseLeagueVenue:
			v.PaidLeagueMember = true
			v.Tier.LeagueEligible = true
		}
		venues[i] = v
	}
	return venues
}

// checkinPlan is one planned submission, possibly deliberately out of range.
type checkinPlan struct {
	req        checkinRequest
	outOfRange bool
}

// generateCheckins builds numCheckins planned submissions across the seeded
// venues and a pool of user IDs. Most users stand inside the geofence; a
// minority are placed far enough away to exercise rejection paths.
func generateCheckins(ctx context.Context, cfg *Config, venues []model.VenueSnapshot) []checkinPlan {
	logger.Get().Info(ctx, "generating check-ins",
		logger.Int("numCheckins", cfg.NumCheckins),
		logger.Int("numUsers", cfg.NumUsers))

	users := make([]string, cfg.NumUsers)
	for i := range users {
		users[i] = uuid.New().String()
	}

	plans := make([]checkinPlan, cfg.NumCheckins)
	for i := range plans {
		venue := venues[i%len(venues)]
		user := users[i%len(users)]

		lat := venue.Location.Lat + (randomFloat()-0.5)*insideJitterDeg
		lng := venue.Location.Lng + (randomFloat()-0.5)*insideJitterDeg
		outOfRange := randomFloat() < 0.1
		if outOfRange {
			lat += outsideOffsetDeg
		}

		plans[i] = checkinPlan{
			req: checkinRequest{
				VenueID: venue.ID,
				UserID:  user,
				Lat:     lat,
				Lng:     lng,
			},
			outOfRange: outOfRange,
		}
	}
	return plans
}
