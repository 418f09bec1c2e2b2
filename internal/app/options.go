package app

import (
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/signalstore"
	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/venuestore"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/admission"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/pulse"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/ranking"
	"github.com/AMASPC-Org/olybars-sub000/pkg/clock"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for admissions, scoring and rotation.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSignalStore injects a prebuilt signal log (e.g. a test fake).
func WithSignalStore(store signalstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.signals = store
		}
	}
}

// WithVenueStore injects a prebuilt venue store.
func WithVenueStore(store venuestore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.venues = store
		}
	}
}

// WithSignalDBPath selects the SQLite file backing the signal log.
// Empty keeps the in-memory log.
func WithSignalDBPath(path string) Option {
	return func(s *Service) {
		s.signalDBPath = path
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the refresh queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval sets how stale a cached buzz may get before the
// sweeper re-enqueues the venue.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithRotationBucket sets the rotation tie-break interval.
func WithRotationBucket(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rotationBucket = d
		}
	}
}

// WithBuzzWindowSize sets the compact widget window size.
func WithBuzzWindowSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.buzzWindowSize = size
		}
	}
}

// WithGateOptions forwards options to the eligibility gate.
func WithGateOptions(opts ...admission.Option) Option {
	return func(s *Service) {
		s.gateOpts = append(s.gateOpts, opts...)
	}
}

// WithPulseOptions forwards options to the pulse calculator.
func WithPulseOptions(opts ...pulse.Option) Option {
	return func(s *Service) {
		s.pulseOpts = append(s.pulseOpts, opts...)
	}
}

// WithRankerOptions forwards options to the discovery ranker.
func WithRankerOptions(opts ...ranking.Option) Option {
	return func(s *Service) {
		s.rankerOpts = append(s.rankerOpts, opts...)
	}
}
