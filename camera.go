// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import "github.com/go-gl/mathgl/mgl32"

// Near and far clip planes of the camera projection.
const (
	cameraNear = 4.0
	cameraFar  = 4096.0
)

// Camera produces the per-pass ViewProjection uniform. The host sets it
// once per frame before issuing geometry draws; the matrix is immutable
// for the duration of the pass.
//
// Position is in the source asset's axis convention; the view matrix
// runs it through the same RemapAxes adapter as vertex positions so the
// camera and the geometry agree on a basis.
type Camera struct {
	Position mgl32.Vec3

	// Euler angles in degrees.
	Pitch float32
	Yaw   float32
	Roll  float32

	projection mgl32.Mat4
}

// NewCamera creates a camera with a perspective projection of the given
// vertical field of view (degrees) and aspect ratio.
func NewCamera(fovyDeg, aspect float32) *Camera {
	return &Camera{
		projection: mgl32.Perspective(mgl32.DegToRad(fovyDeg), aspect, cameraNear, cameraFar),
	}
}

// ViewProjection returns projection * view. The view translation is the
// negated remapped camera position; the orientation applies roll, pitch
// and yaw in that order:
//
//	view = Rz(-roll) * Rx(pitch) * Ry(-yaw) * T(-adapt(position))
func (c *Camera) ViewProjection() mgl32.Mat4 {
	p := RemapAxes(c.Position)
	translation := mgl32.Translate3D(-p.X(), -p.Y(), -p.Z())
	orientation := mgl32.HomogRotate3DZ(mgl32.DegToRad(-c.Roll)).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(c.Pitch))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-c.Yaw)))
	view := orientation.Mul4(translation)
	return c.projection.Mul4(view)
}
