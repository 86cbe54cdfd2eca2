package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/simplekit/jsonstore/internal/codec"
)

// EntityConfig binds an entity store to its file and identity rules.
type EntityConfig[T any, K comparable] struct {
	// Name is the backing file name, resolved by the store's Resolver.
	Name string
	// Key returns the unique identifier of a record. Required.
	Key func(T) K
	// Compare, if set, orders the collection after load and after every
	// mutation. Otherwise insertion order is kept.
	Compare func(a, b T) int
}

// EntityStore is a key-indexed collection of records persisted as a JSON
// array in a single file.
//
// The zero value is not usable; create one with NewEntityStore. All methods
// are safe for concurrent use.
type EntityStore[T any, K comparable] struct {
	name     string
	path     string
	key      func(T) K
	compare  func(a, b T) int
	log      *slog.Logger
	rollback bool
	metrics  *storeMetrics
	subs     *registry[[]T]

	sem    sem
	loaded bool
	items  []T
}

// NewEntityStore returns a store bound to cfg.Name. The file is not read until
// the first operation.
func NewEntityStore[T any, K comparable](cfg EntityConfig[T, K], opts ...Option) (*EntityStore[T, K], error) {
	if cfg.Key == nil {
		return nil, errors.New("entity store requires a key function")
	}
	o := newOptions(opts)
	path, err := o.resolver.Path(cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", cfg.Name, err)
	}
	m, err := newStoreMetrics(o.meter, cfg.Name)
	if err != nil {
		return nil, err
	}
	return &EntityStore[T, K]{
		name:     cfg.Name,
		path:     path,
		key:      cfg.Key,
		compare:  cfg.Compare,
		log:      o.logger.With("store", cfg.Name),
		rollback: o.rollback,
		metrics:  m,
		subs:     newRegistry[[]T](m),
		sem:      newSem(),
	}, nil
}

// Path returns the absolute path of the backing file.
func (s *EntityStore[T, K]) Path() string {
	return s.path
}

// Observe subscribes to the collection. The first element is the current
// snapshot; one more follows every mutation that changes the collection.
//
// The subscription ends when Close is called or ctx is done.
func (s *EntityStore[T, K]) Observe(ctx context.Context) (*Subscription[[]T], error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.sem.release()
	sub := s.subs.add(ctx, cloneList(s.items))
	s.log.Debug("subscribed", "id", sub.ID(), "subscribers", s.subs.len())
	return sub, nil
}

// Fetch returns a copy of the collection.
func (s *EntityStore[T, K]) Fetch(ctx context.Context) ([]T, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.sem.release()
	return cloneList(s.items), nil
}

// Get returns a copy of the record with the given key.
func (s *EntityStore[T, K]) Get(ctx context.Context, key K) (T, bool, error) {
	var zero T
	if err := s.lock(ctx); err != nil {
		return zero, false, err
	}
	defer s.sem.release()
	for i := range s.items {
		if s.key(s.items[i]) == key {
			return cloneValue(s.items[i]), true, nil
		}
	}
	return zero, false, nil
}

// Upsert replaces the record sharing e's key, keeping its position, or
// appends e. The collection is then reordered, persisted and broadcast.
func (s *EntityStore[T, K]) Upsert(ctx context.Context, e T) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.sem.release()
	k := s.key(e)
	next := make([]T, 0, len(s.items)+1)
	replaced := false
	for _, item := range s.items {
		if s.key(item) != k {
			next = append(next, item)
			continue
		}
		if !replaced {
			next = append(next, cloneValue(e))
			replaced = true
		}
	}
	if !replaced {
		next = append(next, cloneValue(e))
	}
	sortStable(next, s.compare)
	return s.commit(ctx, next)
}

// Delete removes every record with the given key. It reports whether anything
// was removed; when nothing matched the file is not touched and no snapshot
// is broadcast.
func (s *EntityStore[T, K]) Delete(ctx context.Context, key K) (bool, error) {
	n, err := s.deleteFunc(ctx, func(e T) bool { return s.key(e) == key })
	return n > 0, err
}

// DeleteFunc removes every record for which del returns true and returns how
// many were removed. Same no-op rule as Delete.
func (s *EntityStore[T, K]) DeleteFunc(ctx context.Context, del func(T) bool) (int, error) {
	return s.deleteFunc(ctx, del)
}

// DeleteAll empties the collection. It is a no-op when already empty.
func (s *EntityStore[T, K]) DeleteAll(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.sem.release()
	if len(s.items) == 0 {
		return nil
	}
	return s.commit(ctx, []T{})
}

func (s *EntityStore[T, K]) deleteFunc(ctx context.Context, del func(T) bool) (int, error) {
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.sem.release()
	next := slices.DeleteFunc(slices.Clone(s.items), del)
	removed := len(s.items) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return removed, err
	}
	return removed, nil
}

// lock acquires the semaphore and loads the cache if needed. On success the
// caller must release the semaphore.
func (s *EntityStore[T, K]) lock(ctx context.Context) error {
	if err := s.sem.acquire(ctx); err != nil {
		return err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		s.sem.release()
		return err
	}
	return nil
}

func (s *EntityStore[T, K]) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	data, err := ReadFile(s.path)
	if err != nil {
		s.metrics.failed(ctx, ErrRead)
		return &Error{Op: "load", Path: s.path, Kind: ErrRead, Err: err}
	}
	items, err := codec.DecodeList[T](data)
	if err != nil {
		s.metrics.failed(ctx, ErrDecode)
		return &Error{Op: "load", Path: s.path, Kind: ErrDecode, Err: err}
	}
	sortStable(items, s.compare)
	s.items = items
	s.loaded = true
	s.metrics.loaded(ctx)
	s.log.Debug("loaded", "path", s.path, "count", len(items))
	return nil
}

// commit installs next as the cache, persists it and broadcasts it.
func (s *EntityStore[T, K]) commit(ctx context.Context, next []T) error {
	prev := s.items
	s.items = next
	data, err := codec.EncodeList(next)
	if err != nil {
		return s.abort(ctx, prev, &Error{Op: "encode", Path: s.path, Kind: ErrEncode, Err: err})
	}
	if err := WriteFile(s.path, data); err != nil {
		return s.abort(ctx, prev, &Error{Op: "write", Path: s.path, Kind: ErrWrite, Err: err})
	}
	s.metrics.persisted(ctx)
	n := s.subs.broadcast(func() []T { return cloneList(s.items) })
	s.metrics.broadcast(ctx, n)
	s.log.Debug("persisted", "count", len(next), "notified", n)
	return nil
}

func (s *EntityStore[T, K]) abort(ctx context.Context, prev []T, err *Error) error {
	s.metrics.failed(ctx, err.Kind)
	if s.rollback {
		s.items = prev
	}
	s.log.Warn("persist failed", "err", err, "rollback", s.rollback)
	return err
}
