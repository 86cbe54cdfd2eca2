package prefs

import (
	"context"
	"fmt"

	"github.com/simplekit/jsonstore/internal/jsonstore"
)

// DefaultUnitsFile is the units preference file name.
const DefaultUnitsFile = "settings_volume_unit.json"

// Units is the persisted units preference. Unit is kept as raw text so a
// value written by a newer version does not break loading.
type Units struct {
	Unit string `json:"unit" jsonschema:"enum=milliliters,enum=ounces,description=Selected volume unit"`
}

// UnitsConfig configures a UnitsStore.
type UnitsConfig struct {
	// Name is the backing file. Defaults to DefaultUnitsFile.
	Name string
	// Default is the unit used when none is stored. Defaults to Milliliters.
	Default VolumeUnit
}

// UnitsStore holds the selected volume unit.
type UnitsStore struct {
	store *jsonstore.ValueStore[Units]
	def   VolumeUnit
}

// NewUnitsStore returns a units store.
func NewUnitsStore(cfg UnitsConfig, opts ...jsonstore.Option) (*UnitsStore, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultUnitsFile
	}
	if cfg.Default == "" {
		cfg.Default = Milliliters
	}
	if !cfg.Default.Valid() {
		return nil, fmt.Errorf("invalid default unit %q", cfg.Default)
	}
	s, err := jsonstore.NewValueStore[Units](cfg.Name, opts...)
	if err != nil {
		return nil, err
	}
	return &UnitsStore{store: s, def: cfg.Default}, nil
}

// Path returns the backing file.
func (u *UnitsStore) Path() string {
	return u.store.Path()
}

// Default returns the unit used when none is stored.
func (u *UnitsStore) Default() VolumeUnit {
	return u.def
}

// Observe streams the selected unit, starting with the current one.
func (u *UnitsStore) Observe(ctx context.Context) (*jsonstore.Subscription[VolumeUnit], error) {
	sub, err := u.store.Observe(ctx)
	if err != nil {
		return nil, err
	}
	return jsonstore.Map(sub, u.resolve), nil
}

// Unit returns the selected unit.
func (u *UnitsStore) Unit(ctx context.Context) (VolumeUnit, error) {
	v, err := u.store.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return u.resolve(v), nil
}

// SetUnit persists unit.
func (u *UnitsStore) SetUnit(ctx context.Context, unit VolumeUnit) error {
	if !unit.Valid() {
		return fmt.Errorf("invalid unit %q", unit)
	}
	return u.store.Upsert(ctx, Units{Unit: string(unit)})
}

// Reset removes the stored unit. Observers then see the default.
func (u *UnitsStore) Reset(ctx context.Context) error {
	return u.store.Delete(ctx)
}

func (u *UnitsStore) resolve(v *Units) VolumeUnit {
	if v == nil {
		return u.def
	}
	if unit := VolumeUnit(v.Unit); unit.Valid() {
		return unit
	}
	return u.def
}
