package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/AMASPC-Org/olybars-sub000/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory refresh queue", t, func() {
		ctx := context.Background()

		Convey("When enqueuing within capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			defer func() { _ = q.Close() }()

			ok := q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-1"})

			Convey("Then the request should be accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2))
			defer func() { _ = q.Close() }()

			So(q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-2"}), ShouldBeTrue)
			ok := q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-3"})

			Convey("Then the enqueue should fail without blocking", func() {
				So(ok, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When dequeuing queued requests", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))

			So(q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-2"}), ShouldBeTrue)

			out := q.Dequeue(ctx)

			Convey("Then requests should arrive in order", func() {
				first := <-out
				second := <-out
				So(first.VenueID, ShouldEqual, "venue-1")
				So(second.VenueID, ShouldEqual, "venue-2")
			})

			Convey("And closing the queue should close the channel", func() {
				<-out
				<-out
				So(q.Close(), ShouldBeNil)
				select {
				case _, open := <-out:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					So("dequeue channel never closed", ShouldBeEmpty)
				}
			})
		})

		Convey("When the queue has been closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(4))
			So(q.Close(), ShouldBeNil)

			Convey("Then it should report closed and refuse new requests", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-1"}), ShouldBeFalse)
			})

			Convey("And closing again should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the context is already canceled", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(1))
			defer func() { _ = q.Close() }()
			So(q.Enqueue(ctx, queue.RefreshRequest{VenueID: "venue-1"}), ShouldBeTrue)

			canceled, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then a full-queue enqueue should fail", func() {
				So(q.Enqueue(canceled, queue.RefreshRequest{VenueID: "venue-2"}), ShouldBeFalse)
			})
		})
	})
}
