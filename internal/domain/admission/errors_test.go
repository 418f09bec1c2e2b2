package admission_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/admission"
	. "github.com/smartystreets/goconvey/convey"
)

func TestError_Messages(t *testing.T) {
	Convey("Given the structured rejection errors", t, func() {
		Convey("When rendering each kind", func() {
			cases := map[string]*admission.Error{
				"venue not found": {Kind: admission.KindNotFound},
				"staff ineligible": {Kind: admission.KindForbidden},
				"out of range: 150m from venue": {
					Kind: admission.KindOutOfRange, DistanceMeters: 150,
				},
				"throttled (global): 30 minutes remaining": {
					Kind: admission.KindThrottled, Scope: admission.ScopeGlobal, MinutesRemaining: 30,
				},
				"compliance limit: max 2 check-ins per 12h": {
					Kind: admission.KindComplianceLimit, Max: 2, WindowHours: 12,
				},
			}

			Convey("Then each message should carry its numeric detail", func() {
				for want, err := range cases {
					So(err.Error(), ShouldEqual, want)
				}
			})
		})
	})
}

func TestAsRejection(t *testing.T) {
	Convey("Given the rejection unwrapper", t, func() {
		Convey("When the error is a rule rejection", func() {
			err := &admission.Error{Kind: admission.KindThrottled}

			Convey("Then it should be recovered", func() {
				rej := admission.AsRejection(err)
				So(rej, ShouldNotBeNil)
				So(rej.Kind, ShouldEqual, admission.KindThrottled)
			})
		})

		Convey("When the rejection is wrapped", func() {
			err := fmt.Errorf("admit: %w", &admission.Error{Kind: admission.KindForbidden})

			Convey("Then it should still be recovered", func() {
				rej := admission.AsRejection(err)
				So(rej, ShouldNotBeNil)
				So(rej.Kind, ShouldEqual, admission.KindForbidden)
			})
		})

		Convey("When the error is an infrastructure failure", func() {
			So(admission.AsRejection(errors.New("disk on fire")), ShouldBeNil)
		})

		Convey("When the error is nil", func() {
			So(admission.AsRejection(nil), ShouldBeNil)
		})
	})
}
