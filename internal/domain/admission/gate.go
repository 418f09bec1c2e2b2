// Package admission implements the check-in eligibility gate: an ordered
// rule pipeline that short-circuits on the first failure and only writes
// once every rule has passed.
package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/venuestore"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/geo"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
	"github.com/AMASPC-Org/olybars-sub000/pkg/metrics"
)

// Default rule constants.
const (
	defaultGeofenceRadiusM  = 100.0
	defaultGlobalCooldown   = 120 * time.Minute
	defaultVenueCooldown    = 360 * time.Minute
	defaultComplianceWindow = 12 * time.Hour
	defaultComplianceCap    = 2
)

// VenueSource is the slice of the venue store the gate needs.
type VenueSource interface {
	Get(ctx context.Context, id string) (*model.VenueSnapshot, error)
	IncrementCheckIns(ctx context.Context, id string) error
}

// SignalLog is the slice of the signal store the gate needs.
type SignalLog interface {
	Append(ctx context.Context, s model.Signal) error
	RecentByUser(ctx context.Context, userID string, t model.SignalType) (*model.Signal, error)
	RecentByUserAndVenue(ctx context.Context, userID, venueID string, t model.SignalType) (*model.Signal, error)
	CountByUserSince(ctx context.Context, userID string, t model.SignalType, since time.Time) (int, error)
}

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithGeofenceRadius sets the maximum user-to-venue distance in meters.
func WithGeofenceRadius(meters float64) Option {
	return func(g *Gate) {
		if meters > 0 {
			g.geofenceRadiusM = meters
		}
	}
}

// WithGlobalCooldown sets the cross-venue check-in cooldown.
func WithGlobalCooldown(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.globalCooldown = d
		}
	}
}

// WithVenueCooldown sets the same-venue check-in cooldown.
func WithVenueCooldown(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.venueCooldown = d
		}
	}
}

// WithComplianceCap sets the regulatory window and its check-in cap.
func WithComplianceCap(window time.Duration, cap int) Option {
	return func(g *Gate) {
		if window > 0 && cap > 0 {
			g.complianceWindow = window
			g.complianceCap = cap
		}
	}
}

// WithLogger sets a custom logger for the gate.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// Gate decides whether a prospective check-in may be admitted.
type Gate struct {
	venues  VenueSource
	signals SignalLog

	geofenceRadiusM  float64
	globalCooldown   time.Duration
	venueCooldown    time.Duration
	complianceWindow time.Duration
	complianceCap    int

	locks  userLocks
	logger logger.Logger
}

// NewGate creates a gate over the given stores.
func NewGate(venues VenueSource, signals SignalLog, opts ...Option) *Gate {
	g := &Gate{
		venues:           venues,
		signals:          signals,
		geofenceRadiusM:  defaultGeofenceRadiusM,
		globalCooldown:   defaultGlobalCooldown,
		venueCooldown:    defaultVenueCooldown,
		complianceWindow: defaultComplianceWindow,
		complianceCap:    defaultComplianceCap,
		logger:           logger.Get().Named("admission"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// TryAdmit runs the rule pipeline for a prospective check-in at now. On
// success exactly one check_in signal is appended and the venue's counter
// incremented; on any rejection zero side effects occur. Rule rejections
// come back as *Error; anything else is an infrastructure failure.
//
// Admissions for the same user are serialized across the rule reads and
// the append, so concurrent requests cannot both pass the compliance cap.
func (g *Gate) TryAdmit(ctx context.Context, venueID, userID string, loc model.Coordinates, now time.Time) (*model.Signal, error) {
	start := time.Now()
	defer func() {
		metrics.RecordAdmissionLatency(float64(time.Since(start).Milliseconds()))
	}()

	mu := g.locks.lock(userID)
	defer mu.Unlock()

	signal, err := g.admit(ctx, venueID, userID, loc, now)
	if err != nil {
		if rej := AsRejection(err); rej != nil {
			metrics.RecordCheckinRejected(string(rej.Kind))
		} else {
			metrics.RecordAdmissionFailure()
		}
		return nil, err
	}

	metrics.RecordCheckinAdmitted()
	return signal, nil
}

func (g *Gate) admit(ctx context.Context, venueID, userID string, loc model.Coordinates, now time.Time) (*model.Signal, error) {
	// Rule 1: existence.
	venue, err := g.venues.Get(ctx, venueID)
	if err != nil {
		if errors.Is(err, venuestore.ErrNotFound) {
			return nil, &Error{Kind: KindNotFound}
		}
		return nil, fmt.Errorf("fetch venue %s: %w", venueID, err)
	}

	// Rule 2: conflict of interest. Staff cannot earn engagement credit
	// at their own venue.
	if venue.Staff(userID) {
		return nil, &Error{Kind: KindForbidden}
	}

	// Rule 3: geofence. A venue with no registered location skips the
	// check rather than rejecting; incompletely onboarded venues soft-fail
	// with a warning to operators.
	verification := model.VerificationMethod("")
	if venue.Location == nil {
		g.logger.Warn(ctx, "venue has no registered location; geofence skipped",
			logger.String("venueID", venueID),
		)
	} else {
		distance := geo.Distance(loc, *venue.Location)
		if distance > g.geofenceRadiusM {
			return nil, &Error{Kind: KindOutOfRange, DistanceMeters: distance}
		}
		verification = model.VerifyGeofence
	}

	// Rule 4: global cooldown against the user's most recent check-in at
	// any venue.
	recent, err := g.signals.RecentByUser(ctx, userID, model.SignalCheckIn)
	if err != nil {
		return nil, fmt.Errorf("fetch recent check-in for %s: %w", userID, err)
	}
	if recent != nil {
		if elapsed := now.Sub(recent.Timestamp); elapsed < g.globalCooldown {
			return nil, &Error{
				Kind:             KindThrottled,
				Scope:            ScopeGlobal,
				MinutesRemaining: remainingMinutes(g.globalCooldown, elapsed),
			}
		}
	}

	// Rule 5: same-venue cooldown against the user's most recent check-in
	// at this venue. A dedicated query, not the global most-recent signal:
	// the latter misses a same-venue violation whenever the user's newest
	// check-in elsewhere already aged past the global cooldown.
	atVenue, err := g.signals.RecentByUserAndVenue(ctx, userID, venueID, model.SignalCheckIn)
	if err != nil {
		return nil, fmt.Errorf("fetch recent venue check-in for %s: %w", userID, err)
	}
	if atVenue != nil {
		if elapsed := now.Sub(atVenue.Timestamp); elapsed < g.venueCooldown {
			return nil, &Error{
				Kind:             KindThrottled,
				Scope:            ScopeVenue,
				MinutesRemaining: remainingMinutes(g.venueCooldown, elapsed),
			}
		}
	}

	// Rule 6: compliance cap over the trailing window.
	count, err := g.signals.CountByUserSince(ctx, userID, model.SignalCheckIn, now.Add(-g.complianceWindow))
	if err != nil {
		return nil, fmt.Errorf("count check-ins for %s: %w", userID, err)
	}
	if count >= g.complianceCap {
		return nil, &Error{
			Kind:        KindComplianceLimit,
			WindowHours: int(g.complianceWindow.Hours()),
			Max:         g.complianceCap,
		}
	}

	// All rules passed: append the signal and bump the counter.
	signal := model.Signal{
		ID:           uuid.NewString(),
		VenueID:      venueID,
		UserID:       userID,
		Type:         model.SignalCheckIn,
		Timestamp:    now,
		Verification: verification,
	}
	if err := g.signals.Append(ctx, signal); err != nil {
		return nil, fmt.Errorf("append check-in signal: %w", err)
	}
	if err := g.venues.IncrementCheckIns(ctx, venueID); err != nil {
		return nil, fmt.Errorf("increment check-in counter: %w", err)
	}

	return &signal, nil
}

// remainingMinutes computes cooldown minutes left, flooring the elapsed
// minutes the way the throttle message reports them.
func remainingMinutes(cooldown, elapsed time.Duration) int {
	elapsedMin := int(elapsed.Milliseconds() / 60_000)
	remaining := int(cooldown.Minutes()) - elapsedMin
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}
