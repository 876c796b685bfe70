// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gbuffer

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.

//go:embed shaders/geometry.wgsl
var geometryShaderSource string

//go:embed shaders/composite.wgsl
var compositeShaderSource string

// Shader entry point names. The vertex entry of the geometry shader is
// selected by Config.RemapAxes, the fragment entry by Config.Variant.
const (
	geometryVertexEntry      = "vs_main"
	geometryVertexRemapEntry = "vs_main_remap"
	geometryFragmentEntry    = "fs_main"
	geometryFragmentFlat     = "fs_flat"
	compositeVertexEntry     = "vs_main"
	compositeFragmentEntry   = "fs_main"
)

// GeometryShaderSource returns the WGSL source for the geometry pass.
func GeometryShaderSource() string { return geometryShaderSource }

// CompositeShaderSource returns the WGSL source for the compositing pass.
func CompositeShaderSource() string { return compositeShaderSource }

// ValidateShaders compiles both embedded shaders with naga and reports
// the first error. Pipeline construction calls this so malformed WGSL
// fails at startup instead of at first draw.
func ValidateShaders() error {
	if geometryShaderSource == "" {
		return fmt.Errorf("geometry shader source is empty")
	}
	if compositeShaderSource == "" {
		return fmt.Errorf("composite shader source is empty")
	}
	if _, err := naga.Compile(geometryShaderSource); err != nil {
		return fmt.Errorf("compile geometry shader: %w", err)
	}
	if _, err := naga.Compile(compositeShaderSource); err != nil {
		return fmt.Errorf("compile composite shader: %w", err)
	}
	return nil
}
