// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import "github.com/go-gl/mathgl/mgl32"

// RemapAxes converts a position from the source asset's axis convention
// (x forward, y left, z up) into the engine's canonical convention:
//
//	adapt(v) = (-v.y, v.z, -v.x)
//
// The remap is a pure rotation of the basis; applying it three times
// yields the identity. It is applied exactly once, to positions only,
// at the start of the geometry vertex stage (the vs_main_remap variant)
// and to the camera position when building the view matrix.
//
// TODO: normals are left in the source convention, so once a lighting
// pass starts reading the normal attachment it will shade in a rotated
// basis relative to the remapped geometry; remap normals here when that
// lands.
func RemapAxes(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{-p.Y(), p.Z(), -p.X()}
}
