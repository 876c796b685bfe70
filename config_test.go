package deferred

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Variant != VariantTextured {
		t.Errorf("Variant = %q, want %q", cfg.Variant, VariantTextured)
	}
	if cfg.RemapAxes {
		t.Error("RemapAxes must default to off")
	}
	if want := [4]float64{0, 0, 1, 1}; cfg.ClearColor != want {
		t.Errorf("ClearColor = %v, want %v", cfg.ClearColor, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	for _, variant := range []string{VariantTextured, VariantFlat} {
		cfg := Config{Variant: variant}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", variant, err)
		}
	}

	cfg := Config{Variant: "wireframe"}
	err := cfg.Validate()
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("got %v, want ErrUnknownVariant", err)
	}

	// The zero value is invalid on purpose.
	if err := (Config{}).Validate(); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("zero Config validates; want ErrUnknownVariant")
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deferred.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
variant = "flat"
remap_axes = true
clear_color = [0.1, 0.2, 0.3, 1.0]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Variant != VariantFlat {
		t.Errorf("Variant = %q, want flat", cfg.Variant)
	}
	if !cfg.RemapAxes {
		t.Error("RemapAxes = false, want true")
	}
	if want := [4]float64{0.1, 0.2, 0.3, 1.0}; cfg.ClearColor != want {
		t.Errorf("ClearColor = %v, want %v", cfg.ClearColor, want)
	}
}

// TestLoadConfigPartial verifies absent fields keep defaults.
func TestLoadConfigPartial(t *testing.T) {
	path := writeConfig(t, `remap_axes = true`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Variant != VariantTextured {
		t.Errorf("Variant = %q, want default %q", cfg.Variant, VariantTextured)
	}
	if want := [4]float64{0, 0, 1, 1}; cfg.ClearColor != want {
		t.Errorf("ClearColor = %v, want default %v", cfg.ClearColor, want)
	}
	if !cfg.RemapAxes {
		t.Error("RemapAxes = false, want true")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("LoadConfig succeeded on a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoadConfigBadVariant(t *testing.T) {
	path := writeConfig(t, `variant = "forward"`)

	if _, err := LoadConfig(path); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("got %v, want ErrUnknownVariant", err)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, `variant = [not toml`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig succeeded on malformed TOML")
	}
}
