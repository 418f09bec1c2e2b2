// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Every rule constant the pulse
// engine applies is tunable here rather than hard-coded.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SignalDBPath selects the SQLite file backing the signal log.
	// Empty means the in-memory log is used.
	SignalDBPath string `koanf:"signal_db_path"`

	// GeofenceRadiusM is the maximum user-to-venue distance for a check-in.
	GeofenceRadiusM float64 `koanf:"geofence_radius_m"`

	// GlobalCooldownMin throttles a user's check-ins across all venues.
	GlobalCooldownMin int `koanf:"global_cooldown_min"`

	// VenueCooldownMin throttles repeat check-ins at the same venue.
	VenueCooldownMin int `koanf:"venue_cooldown_min"`

	// ComplianceWindowH and ComplianceCap bound check-ins per user per window.
	ComplianceWindowH int `koanf:"compliance_window_h"`
	ComplianceCap     int `koanf:"compliance_cap"`

	// HalfLifeMin is the buzz score decay half-life.
	HalfLifeMin int `koanf:"half_life_min"`

	// SignalWindowH is the hard cutoff for signals contributing to buzz.
	SignalWindowH int `koanf:"signal_window_h"`

	// LivelyThreshold and BuzzingThreshold split the buzz status bands.
	LivelyThreshold  float64 `koanf:"lively_threshold"`
	BuzzingThreshold float64 `koanf:"buzzing_threshold"`

	// RotationBucketMS controls how often rotation tie-breaks advance.
	RotationBucketMS int64 `koanf:"rotation_bucket_ms"`

	// ProximityThresholdMi bounds the distance-first sort in the default feed.
	ProximityThresholdMi float64 `koanf:"proximity_threshold_mi"`

	// BuzzWindowSize is the number of live items shown in the compact widget.
	BuzzWindowSize int `koanf:"buzz_window_size"`

	// RefreshWorkerCount sets the number of pulse refresh workers.
	RefreshWorkerCount int `koanf:"refresh_worker_count"`

	// RefreshQueueSize bounds the in-memory refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshIntervalS is how stale a cached buzz may get before the
	// sweeper re-enqueues the venue.
	RefreshIntervalS int `koanf:"refresh_interval_s"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		SignalDBPath:         "",
		GeofenceRadiusM:      100,
		GlobalCooldownMin:    120,
		VenueCooldownMin:     360,
		ComplianceWindowH:    12,
		ComplianceCap:        2,
		HalfLifeMin:          60,
		SignalWindowH:        12,
		LivelyThreshold:      20,
		BuzzingThreshold:     60,
		RotationBucketMS:     300_000,
		ProximityThresholdMi: 15,
		BuzzWindowSize:       3,
		RefreshWorkerCount:   runtime.NumCPU(),
		RefreshQueueSize:     10_000,
		RefreshIntervalS:     60,
	}
	return c
}
