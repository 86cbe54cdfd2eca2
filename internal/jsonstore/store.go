package jsonstore

import (
	"context"
	"slices"
)

// Cloner is implemented by records holding reference types (slices, maps,
// pointers) so snapshots can deep-copy them.
type Cloner[T any] interface {
	Clone() T
}

// cloneValue returns a copy of v, deep if T implements Cloner.
func cloneValue[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

// cloneList returns a freshly allocated copy of items. It is never nil.
func cloneList[T any](items []T) []T {
	out := make([]T, len(items))
	for i := range items {
		out[i] = cloneValue(items[i])
	}
	return out
}

// sem serializes every operation on one store instance.
type sem chan struct{}

func newSem() sem {
	return make(sem, 1)
}

// acquire waits for the serialization point or for ctx to be done.
func (s sem) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s sem) release() {
	<-s
}

// sortStable orders items with cmp when one is configured.
func sortStable[T any](items []T, cmp func(a, b T) int) {
	if cmp != nil {
		slices.SortStableFunc(items, cmp)
	}
}
