// Package queue defines the contract for enqueuing and consuming pulse
// refresh requests.
//
// Cached buzz decays between events, so a sweep re-enqueues stale venues
// and workers recompute them. Recomputes are idempotent full aggregations,
// which makes a lossy bounded queue acceptable: a dropped request is
// picked up by the next sweep.
package queue

import (
	"context"
	"sync"

	"github.com/AMASPC-Org/olybars-sub000/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// RefreshRequest asks a worker to recompute one venue's pulse.
type RefreshRequest struct {
	VenueID string
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a refresh request to the queue.
	// Returns false if the queue is full and the request was not enqueued.
	Enqueue(ctx context.Context, r RefreshRequest) bool

	// Dequeue returns a channel that will receive requests as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan RefreshRequest

	// Len returns the current number of queued requests.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// requests can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan RefreshRequest
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan RefreshRequest, q.capacity)

	metrics.UpdateRefreshQueueCapacity(q.capacity)
	metrics.UpdateRefreshQueueSize(0)

	return q
}

// Enqueue adds a refresh request to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r RefreshRequest) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordRefreshEnqueueError()
		return false
	}

	select {
	case q.requests <- r:
		metrics.RecordRefreshEnqueue()
		metrics.UpdateRefreshQueueSize(len(q.requests))
		return true
	case <-ctx.Done():
		metrics.RecordRefreshEnqueueError()
		return false
	default:
		metrics.RecordRefreshEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive requests as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan RefreshRequest {
	out := make(chan RefreshRequest)
	go func() {
		defer close(out)
		for r := range q.requests {
			select {
			case out <- r:
				metrics.RecordRefreshDequeue()
				metrics.UpdateRefreshQueueSize(len(q.requests))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued requests.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.requests)
	metrics.UpdateRefreshQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.requests)
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
