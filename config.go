// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Albedo variants of the geometry fragment stage. The two are
// alternative configurations of the same stage, not sequential steps.
const (
	// VariantTextured samples the diffuse texture bound at group 2.
	VariantTextured = "textured"

	// VariantFlat writes the constant debug albedo and leaves group 2
	// unbound.
	VariantFlat = "flat"
)

// Config errors.
var (
	// ErrUnknownVariant is returned for an unrecognized albedo variant.
	ErrUnknownVariant = errors.New("deferred: unknown albedo variant")
)

// Config selects the geometry pipeline variant and per-frame clear
// values. The zero value is not valid; start from DefaultConfig.
type Config struct {
	// Variant selects the albedo source: VariantTextured or
	// VariantFlat.
	Variant string `toml:"variant"`

	// RemapAxes applies the coordinate convention adapter to incoming
	// vertex positions (the vs_main_remap entry point).
	RemapAxes bool `toml:"remap_axes"`

	// ClearColor is the geometry pass clear color, RGBA in [0,1].
	ClearColor [4]float64 `toml:"clear_color"`
}

// DefaultConfig returns the textured variant with no axis remap and the
// blue clear color.
func DefaultConfig() Config {
	return Config{
		Variant:    VariantTextured,
		ClearColor: [4]float64{0, 0, 1, 1},
	}
}

// Validate reports whether the configuration can build a pipeline.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantTextured, VariantFlat:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVariant, c.Variant)
	}
}

// LoadConfig reads a TOML pipeline configuration. Fields absent from
// the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("deferred: read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("deferred: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
