package jsonstore

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/simplekit/jsonstore/internal/storepath"
)

// DefaultApp is the application directory used when no resolver is given.
const DefaultApp = "jsonstore"

// Option configures a store.
type Option func(*options)

type options struct {
	resolver storepath.Resolver
	logger   *slog.Logger
	meter    metric.Meter
	rollback bool
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.resolver == nil {
		o.resolver = storepath.UserDir{App: DefaultApp}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.meter == nil {
		o.meter = otel.Meter("github.com/simplekit/jsonstore")
	}
	return o
}

// WithResolver sets where store files live.
func WithResolver(r storepath.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithDir stores files in dir. Shorthand for WithResolver(storepath.Dir(dir)).
func WithDir(dir string) Option {
	return WithResolver(storepath.Dir(dir))
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMeter sets the meter used for store instruments. Defaults to the
// global otel meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithRollbackOnWriteError restores the previous cache content when a
// mutation cannot be encoded or persisted. Without it, the cache keeps the
// attempted change and the error is returned to the caller.
func WithRollbackOnWriteError() Option {
	return func(o *options) {
		o.rollback = true
	}
}
