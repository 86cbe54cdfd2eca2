package healthsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/simplekit/jsonstore/internal/codec"
	"github.com/simplekit/jsonstore/internal/jsonstore"
)

// DefaultMetadataFile is the sync metadata file name.
const DefaultMetadataFile = "healthkit_entry_sync_metadata.json"

// SyncMetadata records that a local entry was synced to an external provider.
type SyncMetadata struct {
	ID                 uuid.UUID  `json:"id" jsonschema:"description=Stable metadata identifier"`
	EntryID            uuid.UUID  `json:"entryID" jsonschema:"description=Local source entry identifier"`
	ProviderIdentifier string     `json:"providerIdentifier" jsonschema:"description=Provider identity such as healthkit.bodyMass"`
	ExternalIdentifier string     `json:"externalIdentifier" jsonschema:"description=Record identifier at the provider"`
	SyncedAt           codec.Time `json:"syncedAt" jsonschema:"description=When the sync completed (RFC3339)"`
}

// NewSyncMetadata returns a record with a fresh ID.
func NewSyncMetadata(entryID uuid.UUID, provider, external string, syncedAt time.Time) SyncMetadata {
	return SyncMetadata{
		ID:                 uuid.New(),
		EntryID:            entryID,
		ProviderIdentifier: provider,
		ExternalIdentifier: external,
		SyncedAt:           codec.ToTime(syncedAt),
	}
}

// Key is the identity of a SyncMetadata record. There is at most one record
// per entry and provider.
type Key struct {
	EntryID            uuid.UUID
	ProviderIdentifier string
}

// Key returns the record identity.
func (m SyncMetadata) Key() Key {
	return Key{EntryID: m.EntryID, ProviderIdentifier: m.ProviderIdentifier}
}

// Validate reports whether the record can be stored.
func (m *SyncMetadata) Validate() error {
	if m.EntryID == uuid.Nil {
		return errors.New("entry id is required")
	}
	if m.ProviderIdentifier == "" {
		return errors.New("provider identifier is required")
	}
	return nil
}

// newestFirst orders records by SyncedAt, most recent first.
func newestFirst(a, b SyncMetadata) int {
	return b.SyncedAt.Compare(a.SyncedAt)
}

// MetadataStore persists SyncMetadata records, newest first.
type MetadataStore struct {
	store *jsonstore.EntityStore[SyncMetadata, Key]
}

// NewMetadataStore returns a store bound to name, or DefaultMetadataFile when
// name is empty.
func NewMetadataStore(name string, opts ...jsonstore.Option) (*MetadataStore, error) {
	if name == "" {
		name = DefaultMetadataFile
	}
	s, err := jsonstore.NewEntityStore(jsonstore.EntityConfig[SyncMetadata, Key]{
		Name:    name,
		Key:     SyncMetadata.Key,
		Compare: newestFirst,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &MetadataStore{store: s}, nil
}

// Path returns the backing file.
func (m *MetadataStore) Path() string {
	return m.store.Path()
}

// Observe streams metadata snapshots, starting with the current one.
func (m *MetadataStore) Observe(ctx context.Context) (*jsonstore.Subscription[[]SyncMetadata], error) {
	return m.store.Observe(ctx)
}

// Fetch returns every record.
func (m *MetadataStore) Fetch(ctx context.Context) ([]SyncMetadata, error) {
	return m.store.Fetch(ctx)
}

// Find returns the record for an entry and provider.
func (m *MetadataStore) Find(ctx context.Context, entryID uuid.UUID, provider string) (SyncMetadata, bool, error) {
	return m.store.Get(ctx, Key{EntryID: entryID, ProviderIdentifier: provider})
}

// Upsert inserts md or replaces the record with the same entry and provider.
func (m *MetadataStore) Upsert(ctx context.Context, md SyncMetadata) error {
	if err := md.Validate(); err != nil {
		return err
	}
	return m.store.Upsert(ctx, md)
}

// DeleteEntry removes the records of entryID for every provider and returns
// how many were removed.
func (m *MetadataStore) DeleteEntry(ctx context.Context, entryID uuid.UUID) (int, error) {
	return m.store.DeleteFunc(ctx, func(md SyncMetadata) bool { return md.EntryID == entryID })
}

// DeleteAll removes every record.
func (m *MetadataStore) DeleteAll(ctx context.Context) error {
	return m.store.DeleteAll(ctx)
}
