package jsonstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type settings struct {
	Enabled bool   `json:"enabled"`
	Theme   string `json:"theme,omitempty"`
}

func setupSettings(t *testing.T, opts ...Option) *ValueStore[settings] {
	t.Helper()
	s, err := NewValueStore[settings]("settings.json", testOptions(t.TempDir(), opts...)...)
	if err != nil {
		t.Fatalf("NewValueStore failed: %v", err)
	}
	return s
}

func TestValueStore(t *testing.T) {
	ctx := context.Background()
	t.Run("scenario", func(t *testing.T) {
		s := setupSettings(t)
		if v, err := s.Fetch(ctx); err != nil || v != nil {
			t.Fatalf("Fetch() = %v, %v, want absent", v, err)
		}
		if err := s.Upsert(ctx, settings{Enabled: true, Theme: "dark"}); err != nil {
			t.Fatal(err)
		}
		v, err := s.Fetch(ctx)
		if err != nil || v == nil || *v != (settings{Enabled: true, Theme: "dark"}) {
			t.Fatalf("Fetch() = %v, %v", v, err)
		}
		if want := `{"enabled":true,"theme":"dark"}`; readFile(t, s.Path()) != want {
			t.Errorf("file = %s, want %s", readFile(t, s.Path()), want)
		}
		if err := s.Delete(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(s.Path()); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("file still exists: %v", err)
		}
		if v, err := s.Fetch(ctx); err != nil || v != nil {
			t.Errorf("Fetch() = %v, %v, want absent", v, err)
		}
	})
	t.Run("absent on disk", func(t *testing.T) {
		for _, content := range []string{"", "null", " \n"} {
			t.Run("content="+content, func(t *testing.T) {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "settings.json"), content)
				s, err := NewValueStore[settings]("settings.json", testOptions(dir)...)
				if err != nil {
					t.Fatal(err)
				}
				if v, err := s.Fetch(ctx); err != nil || v != nil {
					t.Errorf("Fetch() = %v, %v, want absent", v, err)
				}
			})
		}
	})
	t.Run("copy", func(t *testing.T) {
		s := setupSettings(t)
		if err := s.Upsert(ctx, settings{Theme: "light"}); err != nil {
			t.Fatal(err)
		}
		v, _ := s.Fetch(ctx)
		v.Theme = "mutated"
		if again, _ := s.Fetch(ctx); again.Theme != "light" {
			t.Errorf("store was affected by caller mutation: %v", again)
		}
	})
	t.Run("observe", func(t *testing.T) {
		s := setupSettings(t)
		sub, err := s.Observe(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer sub.Close()
		if v := recv(t, sub); v != nil {
			t.Errorf("initial = %v, want nil", v)
		}
		// Deleting an absent value is a no-op.
		if err := s.Delete(ctx); err != nil {
			t.Fatal(err)
		}
		expectNone(t, sub)
		if err := s.Upsert(ctx, settings{Enabled: true}); err != nil {
			t.Fatal(err)
		}
		if v := recv(t, sub); v == nil || !v.Enabled {
			t.Errorf("after upsert = %v", v)
		}
		// Upsert always broadcasts, even with an identical value.
		if err := s.Upsert(ctx, settings{Enabled: true}); err != nil {
			t.Fatal(err)
		}
		if v := recv(t, sub); v == nil || !v.Enabled {
			t.Errorf("after second upsert = %v", v)
		}
		if err := s.Delete(ctx); err != nil {
			t.Fatal(err)
		}
		if v := recv(t, sub); v != nil {
			t.Errorf("after delete = %v, want nil", v)
		}
		expectNone(t, sub)
	})
}

func TestValueStoreErrors(t *testing.T) {
	ctx := context.Background()
	t.Run("decode", func(t *testing.T) {
		s := setupSettings(t)
		writeFile(t, s.Path(), `{"enabled":`)
		if _, err := s.Fetch(ctx); !errors.Is(err, ErrDecode) {
			t.Fatalf("err = %v, want ErrDecode", err)
		}
		writeFile(t, s.Path(), `{"enabled":true}`)
		if v, err := s.Fetch(ctx); err != nil || v == nil || !v.Enabled {
			t.Errorf("Fetch() = %v, %v", v, err)
		}
	})
	t.Run("incompatible", func(t *testing.T) {
		s := setupSettings(t)
		writeFile(t, s.Path(), `[1,2]`)
		if _, err := s.Fetch(ctx); !errors.Is(err, ErrDecode) {
			t.Errorf("err = %v, want ErrDecode", err)
		}
	})
	t.Run("write", func(t *testing.T) {
		s := setupSettings(t)
		if _, err := s.Fetch(ctx); err != nil {
			t.Fatal(err)
		}
		blockPath(t, s.Path())
		if err := s.Upsert(ctx, settings{Theme: "x"}); !errors.Is(err, ErrWrite) {
			t.Fatalf("err = %v, want ErrWrite", err)
		}
		if v, _ := s.Fetch(ctx); v == nil || v.Theme != "x" {
			t.Errorf("Fetch() = %v, want attempted change", v)
		}
	})
	t.Run("remove with rollback", func(t *testing.T) {
		s := setupSettings(t, WithRollbackOnWriteError())
		if err := s.Upsert(ctx, settings{Theme: "kept"}); err != nil {
			t.Fatal(err)
		}
		sub, err := s.Observe(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer sub.Close()
		recv(t, sub)
		blockPath(t, s.Path())
		err = s.Delete(ctx)
		if !errors.Is(err, ErrWrite) {
			t.Fatalf("err = %v, want ErrWrite", err)
		}
		var serr *Error
		if !errors.As(err, &serr) || serr.Op != "remove" {
			t.Errorf("err = %#v", serr)
		}
		expectNone(t, sub)
		if v, _ := s.Fetch(ctx); v == nil || v.Theme != "kept" {
			t.Errorf("Fetch() = %v, want previous value", v)
		}
	})
}
