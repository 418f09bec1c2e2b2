// Package app provides the core business service that implements the
// dependencies required by the HTTP API: the eligibility gate, the pulse
// calculator, the discovery ranker, and the background refresher that
// keeps cached buzz from going stale between events.
package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/mq/queue"
	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/mq/worker"
	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/signalstore"
	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/venuestore"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/admission"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/pulse"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/ranking"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/rotation"
	"github.com/AMASPC-Org/olybars-sub000/pkg/clock"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
	"github.com/AMASPC-Org/olybars-sub000/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultRefreshInterval = time.Minute
	defaultQueueSize       = 10000
	defaultWorkerCount     = 4
	defaultBuzzWindowSize  = 3
	defaultUpcomingHorizon = 2 * time.Hour
)

// Service wires the pulse engine together and exposes its public surface.
type Service struct {
	mu sync.RWMutex

	// Core components
	signals signalstore.Store
	venues  venuestore.Store
	gate    *admission.Gate
	calc    pulse.Calculator
	ranker  *ranking.Ranker

	// Refresher
	refreshQueue queue.Queue
	workerPool   *worker.Pool
	pending      pendingSet

	// Configuration
	clock           clock.Clock
	signalDBPath    string
	workerCount     int
	queueSize       int
	refreshInterval time.Duration
	rotationBucket  time.Duration
	buzzWindowSize  int
	gateOpts        []admission.Option
	pulseOpts       []pulse.Option
	rankerOpts      []ranking.Option

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:           clock.System(),
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		refreshInterval: defaultRefreshInterval,
		rotationBucket:  rotation.DefaultBucket,
		buzzWindowSize:  defaultBuzzWindowSize,
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting pulse engine...")

	if s.signals == nil {
		if s.signalDBPath != "" {
			store, err := signalstore.OpenSQLite(s.signalDBPath)
			if err != nil {
				return err
			}
			s.signals = store
			s.logger.Info(ctx, "using sqlite signal log", logger.String("path", s.signalDBPath))
		} else {
			s.signals = signalstore.NewMemory()
			s.logger.Info(ctx, "using in-memory signal log")
		}
	}
	if s.venues == nil {
		s.venues = venuestore.NewMemory()
	}

	s.gate = admission.NewGate(s.venues, s.signals,
		append([]admission.Option{admission.WithLogger(s.logger.Named("admission"))}, s.gateOpts...)...,
	)
	s.calc = pulse.NewDecayCalculator(s.signals, s.pulseOpts...)
	s.ranker = ranking.NewRanker(
		append([]ranking.Option{ranking.WithRotationBucket(s.rotationBucket)}, s.rankerOpts...)...,
	)

	s.pending.init()
	s.refreshQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.refreshQueue, s.calc, s.venues,
		worker.WithClock(s.clock),
		worker.WithCompleter(&s.pending),
	)
	s.workerPool.Start(ctx)

	go s.sweepLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "pulse engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping pulse engine...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if s.signals != nil {
		_ = s.signals.Close()
	}

	s.started = false
	s.logger.Info(ctx, "pulse engine stopped")
}

// AdmitCheckIn runs the eligibility gate for a prospective check-in. On
// admission the signal is appended, the counter incremented, and the
// venue's pulse recomputed synchronously. Rule rejections come back as
// *admission.Error; anything else is an infrastructure failure.
func (s *Service) AdmitCheckIn(ctx context.Context, venueID, userID string, lat, lng float64) (*model.Signal, error) {
	now := s.clock.Now()

	signal, err := s.gate.TryAdmit(ctx, venueID, userID, model.Coordinates{Lat: lat, Lng: lng}, now)
	if err != nil {
		return nil, err
	}

	// Synchronous recompute so the feed sees the new check-in immediately.
	// A failure here keeps the previous score; the admission stands.
	if err := s.recompute(ctx, venueID, now); err != nil {
		s.logger.Error(ctx, "post-admission recompute failed",
			logger.String("venueID", venueID),
			logger.Error(err),
		)
	}

	return signal, nil
}

// GetPulse recomputes and returns a venue's current buzz. A failed
// recompute leaves the stored score untouched and is reported upstream,
// never silently mapped to zero.
func (s *Service) GetPulse(ctx context.Context, venueID string) (model.PulseReading, error) {
	now := s.clock.Now()

	reading, err := s.calc.Recompute(ctx, venueID, now)
	if err != nil {
		metrics.RecordPulseRecomputeError()
		return model.PulseReading{}, err
	}
	metrics.RecordPulseRecompute()

	if err := s.venues.SetBuzz(ctx, venueID, reading.Score, reading.Status, now); err != nil {
		return model.PulseReading{}, err
	}
	return reading, nil
}

// RankFeed returns the ordered venue list for a feed view. date selects
// the day for the events view; a zero date means the clock's current day.
// userLoc may be nil.
func (s *Service) RankFeed(ctx context.Context, mode ranking.Mode, date time.Time, userLoc *model.Coordinates) ([]model.RankedItem, error) {
	start := time.Now()
	defer func() {
		metrics.RecordFeedRenderLatency(float64(time.Since(start).Milliseconds()))
	}()

	if date.IsZero() {
		date = s.clock.Now()
	}

	venues, err := s.venues.List(ctx)
	if err != nil {
		return nil, err
	}

	metrics.RecordFeedRender(string(mode))
	return s.ranker.Rank(venues, mode, s.clock.Now(), userLoc, date), nil
}

// BuzzWindow returns the rotating display subset of live and upcoming
// items for the compact widget.
func (s *Service) BuzzWindow(ctx context.Context) ([]model.LiveItem, error) {
	venues, err := s.venues.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	candidates := liveCandidates(venues, now)

	metrics.RecordBuzzWindowRender()
	return rotation.Window(candidates, s.buzzWindowSize, now, s.rotationBucket), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.refreshQueue.Len(ctx)
		venueCount := s.venues.Count(ctx)

		stats["refreshQueueLength"] = queueLen
		stats["trackedVenues"] = venueCount

		metrics.UpdateRefreshQueueSize(queueLen)
		metrics.UpdateTrackedVenues(venueCount)
	}

	return stats
}

// Venues exposes the venue store for seeding and CRUD collaborators.
func (s *Service) Venues() venuestore.Store {
	return s.venues
}

// recompute refreshes one venue's cached buzz as of now.
func (s *Service) recompute(ctx context.Context, venueID string, now time.Time) error {
	reading, err := s.calc.Recompute(ctx, venueID, now)
	if err != nil {
		metrics.RecordPulseRecomputeError()
		return err
	}
	metrics.RecordPulseRecompute()
	return s.venues.SetBuzz(ctx, venueID, reading.Score, reading.Status, now)
}

// sweepLoop periodically re-enqueues venues whose cached buzz has gone
// stale. Enqueues are coalesced: a venue with a refresh outstanding is
// skipped until its worker reports done.
func (s *Service) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	venues, err := s.venues.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "refresh sweep failed to list venues", logger.Error(err))
		return
	}

	now := s.clock.Now()
	for _, v := range venues {
		if now.Sub(v.CurrentBuzz.LastUpdated) < s.refreshInterval {
			continue
		}
		if s.pending.seenAndRecord(v.ID) {
			continue // refresh already outstanding
		}
		if !s.refreshQueue.Enqueue(ctx, queue.RefreshRequest{VenueID: v.ID}) {
			s.pending.RefreshDone(v.ID)
		}
	}
}

// liveCandidates builds the deduplicated buzz-window candidate list: at
// most one live or upcoming item per venue, ordered by venue id so the
// rotation offset maps to a stable sequence.
func liveCandidates(venues []model.VenueSnapshot, now time.Time) []model.LiveItem {
	var items []model.LiveItem
	for _, v := range venues {
		if item, ok := liveItem(v, now); ok {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VenueID < items[j].VenueID
	})
	return items
}

func liveItem(v model.VenueSnapshot, now time.Time) (model.LiveItem, bool) {
	if v.FlashBounty.ActiveAt(now) {
		return model.LiveItem{
			VenueID:   v.ID,
			VenueName: v.Name,
			Kind:      model.LiveFlashBounty,
			StartsAt:  &v.FlashBounty.StartsAt,
			EndsAt:    &v.FlashBounty.EndsAt,
		}, true
	}

	for i := range v.HappyHours {
		hh := v.HappyHours[i]
		if !now.Before(hh.StartsAt) && now.Before(hh.EndsAt) {
			return model.LiveItem{
				VenueID:   v.ID,
				VenueName: v.Name,
				Kind:      model.LiveHappyHour,
				StartsAt:  &hh.StartsAt,
				EndsAt:    &hh.EndsAt,
			}, true
		}
	}
	for i := range v.HappyHours {
		hh := v.HappyHours[i]
		if now.Before(hh.StartsAt) && hh.StartsAt.Sub(now) <= defaultUpcomingHorizon {
			return model.LiveItem{
				VenueID:   v.ID,
				VenueName: v.Name,
				Kind:      model.LiveUpcoming,
				StartsAt:  &hh.StartsAt,
				EndsAt:    &hh.EndsAt,
			}, true
		}
	}

	if v.DealEndsIn != nil {
		return model.LiveItem{
			VenueID:   v.ID,
			VenueName: v.Name,
			Kind:      model.LiveDealTag,
		}, true
	}

	return model.LiveItem{}, false
}

// pendingSet coalesces refresh enqueues per venue: seenAndRecord marks a
// venue as outstanding, RefreshDone clears it.
type pendingSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (p *pendingSet) init() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = make(map[string]struct{})
}

func (p *pendingSet) seenAndRecord(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, seen := p.ids[id]; seen {
		return true
	}
	p.ids[id] = struct{}{}
	return false
}

// RefreshDone clears the outstanding mark for a venue.
func (p *pendingSet) RefreshDone(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, id)
}
