package storepath

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDir(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "root")
		got, err := Dir(root).Path("items.json")
		if err != nil {
			t.Fatalf("Path failed: %v", err)
		}
		if want := filepath.Join(root, "items.json"); got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
		if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
			t.Errorf("root directory not created: %v", err)
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Run("empty root", func(t *testing.T) {
			if _, err := Dir("").Path("items.json"); !errors.Is(err, ErrDirectoryUnavailable) {
				t.Errorf("Path() error = %v, want ErrDirectoryUnavailable", err)
			}
		})
		t.Run("root is a file", func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "file")
			if err := os.WriteFile(file, nil, 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Dir(file).Path("items.json"); !errors.Is(err, ErrDirectoryUnavailable) {
				t.Errorf("Path() error = %v, want ErrDirectoryUnavailable", err)
			}
		})
	})
}

func TestUserDir(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if runtime.GOOS != "linux" {
			t.Skip("XDG_CONFIG_HOME is only honored on Linux")
		}
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		got, err := UserDir{App: "simple"}.Path("prefs.json")
		if err != nil {
			t.Fatalf("Path failed: %v", err)
		}
		if want := filepath.Join(base, "simple", "prefs.json"); got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Run("missing app", func(t *testing.T) {
			if _, err := (UserDir{}).Path("prefs.json"); !errors.Is(err, ErrDirectoryUnavailable) {
				t.Errorf("Path() error = %v, want ErrDirectoryUnavailable", err)
			}
		})
		t.Run("no home", func(t *testing.T) {
			if runtime.GOOS != "linux" {
				t.Skip("environment lookup differs per OS")
			}
			t.Setenv("XDG_CONFIG_HOME", "")
			t.Setenv("HOME", "")
			if _, err := (UserDir{App: "simple"}).Path("prefs.json"); !errors.Is(err, ErrDirectoryUnavailable) {
				t.Errorf("Path() error = %v, want ErrDirectoryUnavailable", err)
			}
		})
	})
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain", "entries.json", true},
		{"dotfile", ".hidden.json", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"slash", "a/b.json", false},
		{"backslash", `a\b.json`, false},
		{"escape", "../x.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.ok && err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", tt.input, err)
			}
		})
	}
}
