// Package worker runs the pulse refresh workers that recompute venue
// scores off the refresh queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/mq/queue"
	"github.com/AMASPC-Org/olybars-sub000/internal/domain/model"
	"github.com/AMASPC-Org/olybars-sub000/pkg/clock"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
	"github.com/AMASPC-Org/olybars-sub000/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Recomputer recomputes a venue's pulse as of now.
type Recomputer interface {
	Recompute(ctx context.Context, venueID string, now time.Time) (model.PulseReading, error)
}

// BuzzSink persists the recomputed buzz onto the venue record.
// Last-writer-wins: the recompute is a full aggregation, so write order
// between concurrent refreshes does not matter.
type BuzzSink interface {
	SetBuzz(ctx context.Context, id string, score float64, status string, at time.Time) error
}

// Queue defines how workers receive refresh requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.RefreshRequest
}

// Completer is notified when a venue's refresh finishes (success or not),
// so the sweeper can enqueue it again.
type Completer interface {
	RefreshDone(venueID string)
}

// Worker processes refresh requests until stopped.
type Worker struct {
	queue      Queue
	recomputer Recomputer
	sink       BuzzSink
	completer  Completer
	clock      clock.Clock
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a refresh worker with configuration options.
func NewWorker(q Queue, recomputer Recomputer, sink BuzzSink, opts ...Option) *Worker {
	w := &Worker{
		queue:      q,
		recomputer: recomputer,
		sink:       sink,
		clock:      clock.System(),
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			if err := w.refresh(ctx, r); err != nil {
				w.logger.Error(ctx, "pulse refresh failed", logger.Error(err))
			}
		}
	}
}

func (w *Worker) refresh(ctx context.Context, r queue.RefreshRequest) error {
	if w.completer != nil {
		defer w.completer.RefreshDone(r.VenueID)
	}

	now := w.clock.Now()

	start := time.Now()
	reading, err := w.recomputer.Recompute(ctx, r.VenueID, now)
	metrics.RecordPulseLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		// Leave the previous score untouched; a failed recompute must not
		// decay into a stale zero.
		metrics.RecordPulseRecomputeError()
		metrics.RecordWorkerError()
		return fmt.Errorf("recompute %s: %w", r.VenueID, err)
	}

	if err := w.sink.SetBuzz(ctx, r.VenueID, reading.Score, reading.Status, now); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("persist buzz for %s: %w", r.VenueID, err)
	}

	metrics.RecordPulseRecompute()
	return nil
}

// Pool manages multiple refresh workers.
type Pool struct {
	workers []*Worker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a pool of workerCount refresh workers.
func NewPool(workerCount int, q Queue, recomputer Recomputer, sink BuzzSink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*Worker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewWorker(q, recomputer, sink, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and waits for workers to drain or ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
