package clock_test

import (
	"testing"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/pkg/clock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClocks(t *testing.T) {
	Convey("Given the clock implementations", t, func() {
		base := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

		Convey("When using the system clock", func() {
			c := clock.System()

			Convey("Then it should track wall-clock time", func() {
				before := time.Now()
				now := c.Now()
				So(now, ShouldHappenOnOrAfter, before)
			})
		})

		Convey("When using a fixed clock", func() {
			c := clock.Fixed(base)

			Convey("Then it should never move", func() {
				So(c.Now().Equal(base), ShouldBeTrue)
				So(c.Now().Equal(base), ShouldBeTrue)
			})
		})

		Convey("When using a stepped clock", func() {
			c := clock.NewStepped(base)

			Convey("Then it should start at the given time", func() {
				So(c.Now().Equal(base), ShouldBeTrue)
			})

			Convey("And advancing should move it forward", func() {
				c.Advance(90 * time.Minute)
				So(c.Now().Equal(base.Add(90*time.Minute)), ShouldBeTrue)
			})

			Convey("And setting should pin it", func() {
				pinned := base.Add(-time.Hour)
				c.Set(pinned)
				So(c.Now().Equal(pinned), ShouldBeTrue)
			})
		})
	})
}
