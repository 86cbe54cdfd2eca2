// Package healthsync persists the state of health data synchronization: the
// auto-sync switch and the per-entry sync metadata.
package healthsync

import (
	"context"

	"github.com/simplekit/jsonstore/internal/jsonstore"
)

// DefaultAutoSyncFile is the auto-sync preference file name.
const DefaultAutoSyncFile = "healthkit_auto_sync.json"

// AutoSync is the persisted auto-sync preference.
type AutoSync struct {
	Enabled bool `json:"enabled" jsonschema:"description=Whether entries are synced automatically"`
}

// AutoSyncStore holds the auto-sync switch. An absent value reads as
// disabled.
type AutoSyncStore struct {
	store *jsonstore.ValueStore[AutoSync]
}

// NewAutoSyncStore returns a store bound to name, or DefaultAutoSyncFile when
// name is empty.
func NewAutoSyncStore(name string, opts ...jsonstore.Option) (*AutoSyncStore, error) {
	if name == "" {
		name = DefaultAutoSyncFile
	}
	s, err := jsonstore.NewValueStore[AutoSync](name, opts...)
	if err != nil {
		return nil, err
	}
	return &AutoSyncStore{store: s}, nil
}

// Path returns the backing file.
func (a *AutoSyncStore) Path() string {
	return a.store.Path()
}

// Observe streams the switch state, starting with the current one.
func (a *AutoSyncStore) Observe(ctx context.Context) (*jsonstore.Subscription[bool], error) {
	sub, err := a.store.Observe(ctx)
	if err != nil {
		return nil, err
	}
	return jsonstore.Map(sub, enabled), nil
}

// Enabled returns the switch state.
func (a *AutoSyncStore) Enabled(ctx context.Context) (bool, error) {
	v, err := a.store.Fetch(ctx)
	if err != nil {
		return false, err
	}
	return enabled(v), nil
}

// SetEnabled persists the switch state.
func (a *AutoSyncStore) SetEnabled(ctx context.Context, on bool) error {
	return a.store.Upsert(ctx, AutoSync{Enabled: on})
}

// Reset removes the stored preference. Observers then see false.
func (a *AutoSyncStore) Reset(ctx context.Context) error {
	return a.store.Delete(ctx)
}

func enabled(v *AutoSync) bool {
	return v != nil && v.Enabled
}
