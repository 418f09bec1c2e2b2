package worker

import (
	"github.com/AMASPC-Org/olybars-sub000/pkg/clock"
	"github.com/AMASPC-Org/olybars-sub000/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock sets the clock used to timestamp recomputes.
func WithClock(c clock.Clock) Option {
	return func(w *Worker) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithCompleter sets the refresh completion callback.
func WithCompleter(c Completer) Option {
	return func(w *Worker) {
		if c != nil {
			w.completer = c
		}
	}
}
