package jsonstore

import (
	"context"
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Subscription is a live stream of store snapshots.
//
// The channel returned by C yields the snapshot current at registration
// first, then every later snapshot in mutation order. It is closed once the
// subscription ends.
type Subscription[S any] struct {
	id     string
	out    chan S
	done   chan struct{}
	closed *atomic.Bool
	stop   func()
}

// ID returns the subscription identifier.
func (s *Subscription[S]) ID() string {
	return s.id
}

// C returns the snapshot channel.
func (s *Subscription[S]) C() <-chan S {
	return s.out
}

// Close ends the subscription and releases its registry entry. It is safe to
// call more than once and from any goroutine.
func (s *Subscription[S]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	s.stop()
}

// end marks s finished once its source is gone. There is nothing to stop.
func (s *Subscription[S]) end() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.done)
	}
}

// Map returns a subscription yielding fn applied to every snapshot of src.
// Closing the returned subscription closes src, and it ends when src ends.
func Map[S, R any](src *Subscription[S], fn func(S) R) *Subscription[R] {
	dst := &Subscription[R]{
		id:     src.id,
		out:    make(chan R),
		done:   make(chan struct{}),
		closed: atomic.NewBool(false),
		stop:   src.Close,
	}
	go func() {
		defer close(dst.out)
		defer dst.end()
		for v := range src.C() {
			select {
			case dst.out <- fn(v):
			case <-dst.done:
				return
			case <-src.done:
				return
			}
		}
	}()
	return dst
}

// registry tracks the live subscriptions of one store. It has its own lock so
// Close never waits on a store operation.
type registry[S any] struct {
	mu      sync.Mutex
	queues  map[string]*queue.Queue
	metrics *storeMetrics
}

func newRegistry[S any](m *storeMetrics) *registry[S] {
	return &registry[S]{queues: make(map[string]*queue.Queue), metrics: m}
}

// add registers a subscription whose first element is initial. The caller
// must hold the store semaphore so no broadcast can precede initial.
func (r *registry[S]) add(ctx context.Context, initial S) *Subscription[S] {
	q := queue.New(4)
	_ = q.Put(initial)
	sub := &Subscription[S]{
		id:     uuid.NewString(),
		out:    make(chan S),
		done:   make(chan struct{}),
		closed: atomic.NewBool(false),
	}
	r.mu.Lock()
	r.queues[sub.id] = q
	r.mu.Unlock()
	r.metrics.subscribed(1)

	sub.stop = func() {
		r.remove(sub.id)
		q.Dispose()
	}
	go pump(q, sub.out, sub.done)
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-sub.done:
			}
		}()
	}
	return sub
}

func (r *registry[S]) remove(id string) {
	r.mu.Lock()
	_, ok := r.queues[id]
	delete(r.queues, id)
	r.mu.Unlock()
	if ok {
		r.metrics.subscribed(-1)
	}
}

// len returns the number of live subscriptions.
func (r *registry[S]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}

// broadcast enqueues a fresh snapshot for every live subscription and returns
// how many were notified. It never blocks on a consumer.
func (r *registry[S]) broadcast(snapshot func() S) int {
	r.mu.Lock()
	queues := make([]*queue.Queue, 0, len(r.queues))
	for _, q := range r.queues {
		queues = append(queues, q)
	}
	r.mu.Unlock()
	n := 0
	for _, q := range queues {
		// A queue disposed concurrently by Close rejects the put.
		if err := q.Put(snapshot()); err == nil {
			n++
		}
	}
	return n
}

// pump drains q into out until q is disposed or done is closed.
func pump[S any](q *queue.Queue, out chan<- S, done <-chan struct{}) {
	defer close(out)
	for {
		items, err := q.Get(1)
		if err != nil {
			return
		}
		for _, item := range items {
			select {
			case out <- item.(S):
			case <-done:
				return
			}
		}
	}
}
