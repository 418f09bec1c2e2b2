// Package pulse computes a venue's decayed engagement score from its
// signal history. Every call is a full recompute over the retained window,
// never an incremental update, so redundant or concurrent recomputes
// converge to the same value regardless of call order.
package pulse

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
)

// Buzz status vocabulary produced by the calculator. This is the computed
// 3-state scheme; the reported 4-state vibe vocabulary lives in model.
const (
	StatusChill   = "chill"
	StatusLively  = "lively"
	StatusBuzzing = "buzzing"
)

// Default scoring configuration constants.
const (
	defaultHalfLife         = 60 * time.Minute
	defaultWindow           = 12 * time.Hour
	defaultCheckInValue     = 10.0
	defaultVibeReportValue  = 3.0
	defaultLivelyThreshold  = 20.0
	defaultBuzzingThreshold = 60.0
)

// SignalSource is the slice of the signal log the calculator reads.
type SignalSource interface {
	ByVenue(ctx context.Context, venueID string) ([]model.Signal, error)
}

// Calculator recomputes a venue's buzz from its signal history.
type Calculator interface {
	// Recompute aggregates the venue's retained signals as of now.
	Recompute(ctx context.Context, venueID string, now time.Time) (model.PulseReading, error)
}

// Option applies a configuration option to the DecayCalculator.
type Option func(*DecayCalculator)

// WithHalfLife sets the exponential decay half-life.
func WithHalfLife(d time.Duration) Option {
	return func(c *DecayCalculator) {
		if d > 0 {
			c.halfLife = d
		}
	}
}

// WithWindow sets the hard cutoff: signals older than the window
// contribute exactly zero, not a decayed-near-zero value.
func WithWindow(d time.Duration) Option {
	return func(c *DecayCalculator) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithSignalValues sets the base values for check-ins and vibe reports.
func WithSignalValues(checkIn, vibeReport float64) Option {
	return func(c *DecayCalculator) {
		if checkIn > 0 {
			c.checkInValue = checkIn
		}
		if vibeReport > 0 {
			c.vibeReportValue = vibeReport
		}
	}
}

// WithThresholds sets the lively and buzzing status thresholds.
func WithThresholds(lively, buzzing float64) Option {
	return func(c *DecayCalculator) {
		if lively > 0 && buzzing > lively {
			c.livelyThreshold = lively
			c.buzzingThreshold = buzzing
		}
	}
}

// DecayCalculator implements Calculator with continuous exponential decay.
type DecayCalculator struct {
	signals SignalSource

	halfLife         time.Duration
	window           time.Duration
	checkInValue     float64
	vibeReportValue  float64
	livelyThreshold  float64
	buzzingThreshold float64
}

// NewDecayCalculator creates a calculator reading from signals.
func NewDecayCalculator(signals SignalSource, opts ...Option) *DecayCalculator {
	c := &DecayCalculator{
		signals:          signals,
		halfLife:         defaultHalfLife,
		window:           defaultWindow,
		checkInValue:     defaultCheckInValue,
		vibeReportValue:  defaultVibeReportValue,
		livelyThreshold:  defaultLivelyThreshold,
		buzzingThreshold: defaultBuzzingThreshold,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Recompute aggregates the venue's retained signals as of now. A failed log
// read is returned to the caller; the caller must keep the previous score
// rather than falling back to zero.
func (c *DecayCalculator) Recompute(ctx context.Context, venueID string, now time.Time) (model.PulseReading, error) {
	signals, err := c.signals.ByVenue(ctx, venueID)
	if err != nil {
		return model.PulseReading{}, fmt.Errorf("fetch signals for %s: %w", venueID, err)
	}

	cutoff := now.Add(-c.window)
	halfLives := c.halfLife.Hours()

	var score float64
	for _, s := range signals {
		if s.Timestamp.Before(cutoff) {
			continue
		}
		base := c.baseValue(s.Type)
		if base == 0 {
			continue
		}
		ageHours := now.Sub(s.Timestamp).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		score += base * math.Pow(0.5, ageHours/halfLives)
	}

	return model.PulseReading{
		Score:  score,
		Status: c.status(score),
	}, nil
}

func (c *DecayCalculator) baseValue(t model.SignalType) float64 {
	switch t {
	case model.SignalCheckIn:
		return c.checkInValue
	case model.SignalVibeReport:
		return c.vibeReportValue
	default:
		return 0
	}
}

func (c *DecayCalculator) status(score float64) string {
	switch {
	case score > c.buzzingThreshold:
		return StatusBuzzing
	case score > c.livelyThreshold:
		return StatusLively
	default:
		return StatusChill
	}
}
