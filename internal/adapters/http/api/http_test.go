package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/http/api"
	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/venuestore"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/admission"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/ranking"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDeps implements api.Dependencies with programmable outcomes.
type fakeDeps struct {
	admitErr  error
	pulseErr  error
	feedItems []model.RankedItem
	buzzItems []model.LiveItem

	lastMode    ranking.Mode
	lastDate    time.Time
	lastUserLoc *model.Coordinates
}

func (f *fakeDeps) AdmitCheckIn(_ context.Context, venueID, userID string, _, _ float64) (*model.Signal, error) {
	if f.admitErr != nil {
		return nil, f.admitErr
	}
	return &model.Signal{ID: "sig-1", VenueID: venueID, UserID: userID, Type: model.SignalCheckIn}, nil
}

func (f *fakeDeps) GetPulse(_ context.Context, _ string) (model.PulseReading, error) {
	if f.pulseErr != nil {
		return model.PulseReading{}, f.pulseErr
	}
	return model.PulseReading{Score: 42.5, Status: "lively"}, nil
}

func (f *fakeDeps) RankFeed(_ context.Context, mode ranking.Mode, date time.Time, userLoc *model.Coordinates) ([]model.RankedItem, error) {
	f.lastMode = mode
	f.lastDate = date
	f.lastUserLoc = userLoc
	return f.feedItems, nil
}

func (f *fakeDeps) BuzzWindow(_ context.Context) ([]model.LiveItem, error) {
	return f.buzzItems, nil
}

// fakeStats implements api.StatsProvider.
type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "trackedVenues": 2}
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(url string, body any) (*http.Response, map[string]any) {
	data, err := json.Marshal(body)
	So(err, ShouldBeNil)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	So(err, ShouldBeNil)
	return resp, decodeBody(resp)
}

func getJSON(url string) (*http.Response, map[string]any) {
	resp, err := http.Get(url)
	So(err, ShouldBeNil)
	return resp, decodeBody(resp)
}

func decodeBody(resp *http.Response) map[string]any {
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func TestCheckinEndpoint(t *testing.T) {
	Convey("Given the check-in endpoint", t, func() {
		deps := &fakeDeps{}
		srv := newTestServer(deps)
		Reset(srv.Close)

		valid := map[string]any{
			"venue_id": "venue-1", "user_id": "user-1",
			"lat": 47.0379, "lng": -122.9007,
		}

		Convey("When posting a valid check-in", func() {
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then it should be admitted with 201", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(body["status"], ShouldEqual, "admitted")
				So(body["signal_id"], ShouldEqual, "sig-1")
				So(body["venue_id"], ShouldEqual, "venue-1")
			})
		})

		Convey("When the body is not JSON", func() {
			resp, err := http.Post(srv.URL+"/checkins", "application/json", bytes.NewReader([]byte("{")))
			So(err, ShouldBeNil)
			body := decodeBody(resp)

			Convey("Then it should fail with 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When required fields are missing or invalid", func() {
			cases := []map[string]any{
				{"user_id": "user-1", "lat": 47.0, "lng": -122.9},
				{"venue_id": "venue-1", "lat": 47.0, "lng": -122.9},
				{"venue_id": "venue-1", "user_id": "user-1", "lat": 91.0, "lng": -122.9},
				{"venue_id": "venue-1", "user_id": "user-1", "lat": 47.0, "lng": -181.0},
			}

			Convey("Then each should fail with 400", func() {
				for _, c := range cases {
					resp, body := postJSON(srv.URL+"/checkins", c)
					So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
					So(body["code"], ShouldEqual, "bad_request")
				}
			})
		})

		Convey("When the gate rejects for an unknown venue", func() {
			deps.admitErr = &admission.Error{Kind: admission.KindNotFound}
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then the status should be 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(body["kind"], ShouldEqual, "not_found")
			})
		})

		Convey("When the gate rejects venue staff", func() {
			deps.admitErr = &admission.Error{Kind: admission.KindForbidden}
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then the status should be 403", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
				So(body["kind"], ShouldEqual, "forbidden")
			})
		})

		Convey("When the gate rejects an out-of-range user", func() {
			deps.admitErr = &admission.Error{Kind: admission.KindOutOfRange, DistanceMeters: 154.2}
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then the status should be 422 with the distance", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
				So(body["kind"], ShouldEqual, "out_of_range")
				So(body["distance_meters"], ShouldEqual, 154.2)
			})
		})

		Convey("When the gate throttles the user", func() {
			deps.admitErr = &admission.Error{
				Kind: admission.KindThrottled, Scope: admission.ScopeGlobal, MinutesRemaining: 30,
			}
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then the status should be 429 with the wait", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
				So(body["kind"], ShouldEqual, "throttled")
				So(body["scope"], ShouldEqual, "global")
				So(body["minutes_remaining"], ShouldEqual, 30)
			})
		})

		Convey("When the compliance cap rejects", func() {
			deps.admitErr = &admission.Error{
				Kind: admission.KindComplianceLimit, WindowHours: 12, Max: 2,
			}
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then the status should be 429 with the cap", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
				So(body["kind"], ShouldEqual, "compliance_limit")
				So(body["window_hours"], ShouldEqual, 12)
				So(body["max"], ShouldEqual, 2)
			})
		})

		Convey("When the gate fails with an infrastructure error", func() {
			deps.admitErr = errors.New("store unavailable")
			resp, body := postJSON(srv.URL+"/checkins", valid)

			Convey("Then the status should be 500, never a rule verdict", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(body["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(srv.URL + "/checkins")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestPulseEndpoint(t *testing.T) {
	Convey("Given the venue pulse endpoint", t, func() {
		deps := &fakeDeps{}
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When fetching a venue's pulse", func() {
			resp, body := getJSON(srv.URL + "/venues/venue-1/pulse")

			Convey("Then the reading should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["score"], ShouldEqual, 42.5)
				So(body["status"], ShouldEqual, "lively")
			})
		})

		Convey("When the venue is unknown", func() {
			deps.pulseErr = venuestore.ErrNotFound
			resp, body := getJSON(srv.URL + "/venues/venue-404/pulse")

			Convey("Then the status should be 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the path is malformed", func() {
			for _, path := range []string{"/venues//pulse", "/venues/venue-1", "/venues/a/b/pulse"} {
				resp, _ := getJSON(srv.URL + path)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the recompute fails", func() {
			deps.pulseErr = errors.New("signal log unavailable")
			resp, _ := getJSON(srv.URL + "/venues/venue-1/pulse")

			Convey("Then the status should be 500", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestFeedEndpoint(t *testing.T) {
	Convey("Given the feed endpoint", t, func() {
		deps := &fakeDeps{feedItems: []model.RankedItem{
			{Venue: model.VenueSnapshot{ID: "venue-1"}},
		}}
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When fetching without parameters", func() {
			resp, err := http.Get(srv.URL + "/feed")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then the default mode should apply", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.lastMode, ShouldEqual, ranking.ModeDefault)
				So(deps.lastUserLoc, ShouldBeNil)
			})

			Convey("And the date should pass through as zero for the ranker to resolve", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.lastDate.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When requesting the events mode with a date", func() {
			resp, err := http.Get(srv.URL + "/feed?mode=events&date=2025-06-06")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then the date should parse through", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.lastMode, ShouldEqual, ranking.ModeEvents)
				So(deps.lastDate.Format("2006-01-02"), ShouldEqual, "2025-06-06")
			})
		})

		Convey("When a viewer location is provided", func() {
			resp, err := http.Get(srv.URL + "/feed?lat=47.0379&lng=-122.9007")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then the location should reach the ranker", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.lastUserLoc, ShouldNotBeNil)
				So(deps.lastUserLoc.Lat, ShouldEqual, 47.0379)
			})
		})

		Convey("When the mode is unknown", func() {
			resp, body := getJSON(srv.URL + "/feed?mode=trending")

			Convey("Then the status should be 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the date is malformed", func() {
			resp, _ := getJSON(srv.URL + "/feed?mode=events&date=06-06-2025")

			Convey("Then the status should be 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the coordinates are malformed", func() {
			resp, _ := getJSON(srv.URL + "/feed?lat=abc&lng=-122.9")

			Convey("Then the status should be 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestBuzzAndStatsEndpoints(t *testing.T) {
	Convey("Given the buzz and stats endpoints", t, func() {
		deps := &fakeDeps{buzzItems: []model.LiveItem{
			{VenueID: "venue-1", VenueName: "Dockside", Kind: model.LiveHappyHour},
		}}
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When fetching the buzz window", func() {
			resp, err := http.Get(srv.URL + "/buzz")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			var items []model.LiveItem
			So(json.NewDecoder(resp.Body).Decode(&items), ShouldBeNil)

			Convey("Then the live items should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(items), ShouldEqual, 1)
				So(items[0].Kind, ShouldEqual, model.LiveHappyHour)
			})
		})

		Convey("When fetching stats", func() {
			resp, body := getJSON(srv.URL + "/stats")

			Convey("Then the provider's snapshot should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["started"], ShouldEqual, true)
			})
		})

		Convey("When fetching the health endpoint", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then the metrics registry should serve", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
