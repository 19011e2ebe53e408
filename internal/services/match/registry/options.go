package registry

import (
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRand sets the generator used to pick the damaged side. The default is
// seeded from crypto/rand.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithReporter sets the sink for swallowed delivery failures.
func WithReporter(reporter Reporter) Option {
	return func(r *Registry) {
		if reporter != nil {
			r.reporter = reporter
		}
	}
}

// WithRecorder sets the sink for session lifecycle events.
func WithRecorder(recorder Recorder) Option {
	return func(r *Registry) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// WithClock sets the time source stamped on new matches.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTracer sets the tracer for registry spans. The default is the global
// tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithIDGenerator sets how match ids are allocated.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}
