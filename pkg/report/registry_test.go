package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRegistryHasDefault(t *testing.T) {
	registry := NewRegistry()
	if registry.Count() != 1 {
		t.Fatalf("expected 1 layout, got %d", registry.Count())
	}
	layout, ok := registry.Get("default")
	if !ok {
		t.Fatal("default layout not registered")
	}
	if !layout.IsCompiled() {
		t.Error("default layout should be compiled")
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		registry := NewRegistry()
		layout := &RowLayout{Name: "provincial", Pattern: defaultRowPattern}
		if err := registry.Register(layout); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, ok := registry.Get("provincial"); !ok {
			t.Error("registered layout not found")
		}
		if !layout.IsCompiled() {
			t.Error("Register should compile the layout")
		}
	})

	t.Run("nil_rejected", func(t *testing.T) {
		if err := NewRegistry().Register(nil); err == nil {
			t.Error("expected error for nil layout")
		}
	})

	t.Run("unnamed_rejected", func(t *testing.T) {
		layout := &RowLayout{Pattern: defaultRowPattern}
		if err := NewRegistry().Register(layout); err == nil {
			t.Error("expected error for unnamed layout")
		}
	})

	t.Run("default_name_reserved", func(t *testing.T) {
		layout := &RowLayout{Name: "default", Pattern: defaultRowPattern}
		if err := NewRegistry().Register(layout); err == nil {
			t.Error("expected error for reserved layout name")
		}
	})

	t.Run("bad_pattern_rejected", func(t *testing.T) {
		layout := &RowLayout{Name: "broken", Pattern: `(`}
		if err := NewRegistry().Register(layout); err == nil {
			t.Error("expected error for uncompilable layout")
		}
	})

	t.Run("same_name_replaces", func(t *testing.T) {
		registry := NewRegistry()
		first := &RowLayout{Name: "provincial", Pattern: defaultRowPattern, Description: "v1"}
		second := &RowLayout{Name: "provincial", Pattern: defaultRowPattern, Description: "v2"}
		if err := registry.Register(first); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if err := registry.Register(second); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		layout, _ := registry.Get("provincial")
		if layout.Description != "v2" {
			t.Errorf("expected replacement, got description %q", layout.Description)
		}
	})
}

func TestRegistryLoadDirectory(t *testing.T) {
	dir := t.TempDir()

	named := "name: provincial\npattern: " + yamlQuote(defaultRowPattern) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "prov.yaml"), []byte(named), 0644); err != nil {
		t.Fatal(err)
	}
	unnamed := "pattern: " + yamlQuote(defaultRowPattern) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "compact.yml"), []byte(unnamed), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewRegistryWithDirectory failed: %v", err)
	}

	if registry.Count() != 3 {
		t.Errorf("expected 3 layouts (default + 2 loaded), got %d", registry.Count())
	}
	if _, ok := registry.Get("provincial"); !ok {
		t.Error("layout with explicit name not loaded")
	}
	if _, ok := registry.Get("compact"); !ok {
		t.Error("layout named from file basename not loaded")
	}

	names := make([]string, 0)
	for _, layout := range registry.List() {
		names = append(names, layout.Name)
	}
	want := []string{"compact", "default", "provincial"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("List order = %v, want %v", names, want)
		}
	}
}

func TestRegistryLoadDirectoryMissing(t *testing.T) {
	registry, err := NewRegistryWithDirectory(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing directory should not be an error, got: %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("expected only the default layout, got %d", registry.Count())
	}
}

func TestRegistryLoadDirectoryBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("pattern: '('\n"), 0644); err != nil {
		t.Fatal(err)
	}
	good := "name: provincial\npattern: " + yamlQuote(defaultRowPattern) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "prov.yaml"), []byte(good), 0644); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry()
	err := registry.LoadDirectory(dir)
	if err == nil {
		t.Fatal("expected error for broken layout file")
	}
	if !strings.Contains(err.Error(), "broken.yaml") {
		t.Errorf("error should name the broken file, got: %v", err)
	}
	if _, ok := registry.Get("provincial"); !ok {
		t.Error("good layout should load despite sibling failure")
	}
}

func TestRegistryReloadKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	registry, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(&RowLayout{Name: "transient", Pattern: defaultRowPattern}); err != nil {
		t.Fatal(err)
	}

	if err := registry.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if _, ok := registry.Get("default"); !ok {
		t.Error("default layout must survive a reload")
	}
	if _, ok := registry.Get("transient"); ok {
		t.Error("code-registered layout should not survive a reload")
	}
}

func TestRegistryWatchRequiresDirectory(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Watch(); err == nil {
		t.Error("Watch without a directory should fail")
		registry.StopWatch()
	}
}

// yamlQuote single-quotes a regex for embedding in a YAML document.
func yamlQuote(pattern string) string {
	return "'" + strings.ReplaceAll(pattern, "'", "''") + "'"
}
