package loader

import (
	"time"

	"github.com/specialistvlad/spfrm/internal/clock"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source for load deadlines.
func WithClock(c clock.Clock) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithDefaultTimeout sets the timeout for requests without a timeout
// directive. Negative values are ignored.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d >= 0 {
			r.defaultTimeout = d
		}
	}
}

// WithObserver adds an observer of resource transitions. Observers are called
// in the order they were added.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithTracer replaces the tracer used for load spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}
