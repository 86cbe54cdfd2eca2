package jsonstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/simplekit/jsonstore/internal/codec"
)

// ValueStore holds at most one record persisted as a JSON object in a single
// file. A nil *V means the value is absent and the file does not exist.
type ValueStore[V any] struct {
	name     string
	path     string
	log      *slog.Logger
	rollback bool
	metrics  *storeMetrics
	subs     *registry[*V]

	sem    sem
	loaded bool
	value  *V
}

// NewValueStore returns a store bound to name.
func NewValueStore[V any](name string, opts ...Option) (*ValueStore[V], error) {
	o := newOptions(opts)
	path, err := o.resolver.Path(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	m, err := newStoreMetrics(o.meter, name)
	if err != nil {
		return nil, err
	}
	return &ValueStore[V]{
		name:     name,
		path:     path,
		log:      o.logger.With("store", name),
		rollback: o.rollback,
		metrics:  m,
		subs:     newRegistry[*V](m),
		sem:      newSem(),
	}, nil
}

// Path returns the absolute path of the backing file.
func (s *ValueStore[V]) Path() string {
	return s.path
}

// Observe subscribes to the value. The first element is the current value,
// nil when absent.
func (s *ValueStore[V]) Observe(ctx context.Context) (*Subscription[*V], error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.sem.release()
	sub := s.subs.add(ctx, clonePtr(s.value))
	s.log.Debug("subscribed", "id", sub.ID(), "subscribers", s.subs.len())
	return sub, nil
}

// Fetch returns a copy of the value, or nil when absent.
func (s *ValueStore[V]) Fetch(ctx context.Context) (*V, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.sem.release()
	return clonePtr(s.value), nil
}

// Upsert replaces the value, persists and broadcasts it.
func (s *ValueStore[V]) Upsert(ctx context.Context, v V) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.sem.release()
	prev := s.value
	next := cloneValue(v)
	s.value = &next
	data, err := codec.Encode(next)
	if err != nil {
		return s.abort(ctx, prev, &Error{Op: "encode", Path: s.path, Kind: ErrEncode, Err: err})
	}
	if err := WriteFile(s.path, data); err != nil {
		return s.abort(ctx, prev, &Error{Op: "write", Path: s.path, Kind: ErrWrite, Err: err})
	}
	s.published(ctx)
	return nil
}

// Delete removes the backing file and broadcasts nil. It is a no-op when the
// value is already absent.
func (s *ValueStore[V]) Delete(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.sem.release()
	if s.value == nil {
		return nil
	}
	prev := s.value
	s.value = nil
	if err := RemoveFile(s.path); err != nil {
		return s.abort(ctx, prev, &Error{Op: "remove", Path: s.path, Kind: ErrWrite, Err: err})
	}
	s.published(ctx)
	return nil
}

func (s *ValueStore[V]) lock(ctx context.Context) error {
	if err := s.sem.acquire(ctx); err != nil {
		return err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		s.sem.release()
		return err
	}
	return nil
}

func (s *ValueStore[V]) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	data, err := ReadFile(s.path)
	if err != nil {
		s.metrics.failed(ctx, ErrRead)
		return &Error{Op: "load", Path: s.path, Kind: ErrRead, Err: err}
	}
	var v *V
	if len(bytes.TrimSpace(data)) != 0 {
		if err := codec.Unmarshal(data, &v); err != nil {
			s.metrics.failed(ctx, ErrDecode)
			return &Error{Op: "load", Path: s.path, Kind: ErrDecode, Err: err}
		}
	}
	s.value = v
	s.loaded = true
	s.metrics.loaded(ctx)
	s.log.Debug("loaded", "path", s.path, "present", v != nil)
	return nil
}

func (s *ValueStore[V]) published(ctx context.Context) {
	s.metrics.persisted(ctx)
	n := s.subs.broadcast(func() *V { return clonePtr(s.value) })
	s.metrics.broadcast(ctx, n)
	s.log.Debug("persisted", "present", s.value != nil, "notified", n)
}

func (s *ValueStore[V]) abort(ctx context.Context, prev *V, err *Error) error {
	s.metrics.failed(ctx, err.Kind)
	if s.rollback {
		s.value = prev
	}
	s.log.Warn("persist failed", "err", err, "rollback", s.rollback)
	return err
}

func clonePtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := cloneValue(*p)
	return &v
}
