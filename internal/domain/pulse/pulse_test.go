package pulse_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/pulse"
	. "github.com/smartystreets/goconvey/convey"
)

// sliceSource serves a fixed signal slice per venue.
type sliceSource struct {
	signals map[string][]model.Signal
	err     error
}

func (s *sliceSource) ByVenue(_ context.Context, venueID string) ([]model.Signal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.signals[venueID], nil
}

func checkIn(venueID string, at time.Time) model.Signal {
	return model.Signal{
		ID:        "sig-" + at.Format("150405.000"),
		VenueID:   venueID,
		UserID:    "user-1",
		Type:      model.SignalCheckIn,
		Timestamp: at,
	}
}

func TestDecayCalculator_Recompute(t *testing.T) {
	Convey("Given a decay calculator with default configuration", t, func() {
		now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
		src := &sliceSource{signals: map[string][]model.Signal{}}
		calc := pulse.NewDecayCalculator(src)

		Convey("When the venue has no signals", func() {
			reading, err := calc.Recompute(context.Background(), "venue-1", now)

			Convey("Then the score should be zero and the status chill", func() {
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 0)
				So(reading.Status, ShouldEqual, pulse.StatusChill)
			})
		})

		Convey("When a check-in just happened", func() {
			src.signals["venue-1"] = []model.Signal{checkIn("venue-1", now)}

			Convey("Then it should contribute its full base value", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 10.0)
				So(reading.Status, ShouldEqual, pulse.StatusChill)
			})
		})

		Convey("When a check-in is one half-life old", func() {
			src.signals["venue-1"] = []model.Signal{checkIn("venue-1", now.Add(-60*time.Minute))}

			Convey("Then it should contribute half its base value", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldAlmostEqual, 5.0, 1e-9)
			})
		})

		Convey("When a check-in is two half-lives old", func() {
			src.signals["venue-1"] = []model.Signal{checkIn("venue-1", now.Add(-120*time.Minute))}

			Convey("Then it should contribute a quarter of its base value", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldAlmostEqual, 2.5, 1e-9)
			})
		})

		Convey("When a check-in is older than the retention window", func() {
			src.signals["venue-1"] = []model.Signal{checkIn("venue-1", now.Add(-13*time.Hour))}

			Convey("Then it should contribute exactly zero", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 0)
			})
		})

		Convey("When a check-in sits just inside the window", func() {
			src.signals["venue-1"] = []model.Signal{checkIn("venue-1", now.Add(-12*time.Hour+time.Minute))}

			Convey("Then it should still contribute a decayed value", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldBeGreaterThan, 0)
				So(reading.Score, ShouldBeLessThan, 0.01)
			})
		})

		Convey("When a signal is timestamped in the future", func() {
			src.signals["venue-1"] = []model.Signal{checkIn("venue-1", now.Add(time.Minute))}

			Convey("Then its age should clamp to zero, never amplify", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 10.0)
			})
		})

		Convey("When a vibe report arrives", func() {
			src.signals["venue-1"] = []model.Signal{{
				ID: "sig-v", VenueID: "venue-1", UserID: "user-2",
				Type: model.SignalVibeReport, Timestamp: now,
			}}

			Convey("Then it should contribute its smaller base value", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 3.0)
			})
		})

		Convey("When a photo upload arrives", func() {
			src.signals["venue-1"] = []model.Signal{{
				ID: "sig-p", VenueID: "venue-1", UserID: "user-2",
				Type: model.SignalPhotoUpload, Timestamp: now,
			}}

			Convey("Then it should contribute nothing to the score", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 0)
			})
		})

		Convey("When seven users check in within minutes", func() {
			var signals []model.Signal
			for i := 0; i < 7; i++ {
				signals = append(signals, checkIn("venue-1", now.Add(-time.Duration(i)*time.Minute)))
			}
			src.signals["venue-1"] = signals

			Convey("Then the venue should be buzzing", func() {
				reading, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				So(reading.Score, ShouldBeGreaterThan, 60)
				So(reading.Status, ShouldEqual, pulse.StatusBuzzing)
			})
		})

		Convey("When the same history is recomputed at a later time", func() {
			src.signals["venue-1"] = []model.Signal{
				checkIn("venue-1", now.Add(-30*time.Minute)),
				checkIn("venue-1", now.Add(-90*time.Minute)),
			}

			Convey("Then the score should be non-increasing without new signals", func() {
				first, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldBeNil)
				second, err := calc.Recompute(context.Background(), "venue-1", now.Add(45*time.Minute))
				So(err, ShouldBeNil)
				So(second.Score, ShouldBeLessThan, first.Score)
			})
		})

		Convey("When the signal source fails", func() {
			src.err = errors.New("log unavailable")

			Convey("Then the error should propagate instead of reading zero", func() {
				_, err := calc.Recompute(context.Background(), "venue-1", now)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestDecayCalculator_Thresholds(t *testing.T) {
	Convey("Given the status thresholds", t, func() {
		now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
		src := &sliceSource{signals: map[string][]model.Signal{}}

		// Inflated base values make exact scores easy to construct.
		calc := pulse.NewDecayCalculator(src, pulse.WithSignalValues(20, 3))

		score := func(n int) string {
			signals := make([]model.Signal, 0, n)
			for i := 0; i < n; i++ {
				s := checkIn("venue-1", now)
				s.ID = s.ID + "-" + string(rune('a'+i))
				signals = append(signals, s)
			}
			src.signals["venue-1"] = signals
			reading, err := calc.Recompute(context.Background(), "venue-1", now)
			So(err, ShouldBeNil)
			return reading.Status
		}

		Convey("When the score lands exactly on the lively threshold", func() {
			Convey("Then the venue should still be chill", func() {
				// 1 * 20 = 20, not strictly greater.
				So(score(1), ShouldEqual, pulse.StatusChill)
			})
		})

		Convey("When the score lands exactly on the buzzing threshold", func() {
			Convey("Then the venue should still be lively", func() {
				// 3 * 20 = 60.
				So(score(3), ShouldEqual, pulse.StatusLively)
			})
		})

		Convey("When the score clears the buzzing threshold", func() {
			Convey("Then the venue should be buzzing", func() {
				// 4 * 20 = 80.
				So(score(4), ShouldEqual, pulse.StatusBuzzing)
			})
		})
	})
}

func TestDecayCalculator_Options(t *testing.T) {
	Convey("Given a calculator with a custom half-life", t, func() {
		now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
		src := &sliceSource{signals: map[string][]model.Signal{
			"venue-1": {checkIn("venue-1", now.Add(-30*time.Minute))},
		}}
		calc := pulse.NewDecayCalculator(src, pulse.WithHalfLife(30*time.Minute))

		Convey("When recomputing a signal one half-life old", func() {
			reading, err := calc.Recompute(context.Background(), "venue-1", now)

			Convey("Then the shorter half-life should apply", func() {
				So(err, ShouldBeNil)
				So(reading.Score, ShouldAlmostEqual, 5.0, 1e-9)
			})
		})
	})

	Convey("Given a calculator with a custom window", t, func() {
		now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
		src := &sliceSource{signals: map[string][]model.Signal{
			"venue-1": {checkIn("venue-1", now.Add(-2*time.Hour))},
		}}
		calc := pulse.NewDecayCalculator(src, pulse.WithWindow(time.Hour))

		Convey("When recomputing a signal past the shorter window", func() {
			reading, err := calc.Recompute(context.Background(), "venue-1", now)

			Convey("Then it should be cut off entirely", func() {
				So(err, ShouldBeNil)
				So(reading.Score, ShouldEqual, 0)
			})
		})
	})
}
