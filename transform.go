// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import "github.com/go-gl/mathgl/mgl32"

// Transform produces the per-draw ModelTransform uniform from a
// position, an orientation and a per-axis scale. The matrix is owned by
// the object being drawn and uploaded immediately before its draw call;
// it is not retained across draws.
//
// The pipeline passes normals through untransformed, so shading is only
// correct while the resulting matrix stays orthonormal. Keep Scale at
// (1,1,1) for anything that will be lit.
type Transform struct {
	position    mgl32.Vec3
	orientation mgl32.Quat
	scale       mgl32.Vec3
}

// NewTransform returns an identity transform.
func NewTransform() *Transform {
	return &Transform{
		orientation: mgl32.QuatIdent(),
		scale:       mgl32.Vec3{1, 1, 1},
	}
}

// Translate moves the transform by the given offset.
func (t *Transform) Translate(offset mgl32.Vec3) {
	t.position = t.position.Add(offset)
}

// Rotate composes a rotation of angle radians around axis onto the
// current orientation.
func (t *Transform) Rotate(axis mgl32.Vec3, angle float32) {
	t.orientation = t.orientation.Mul(mgl32.QuatRotate(angle, axis))
}

// Scale multiplies the current scale component-wise.
func (t *Transform) Scale(s mgl32.Vec3) {
	t.scale = mgl32.Vec3{
		t.scale.X() * s.X(),
		t.scale.Y() * s.Y(),
		t.scale.Z() * s.Z(),
	}
}

// Position returns the current position.
func (t *Transform) Position() mgl32.Vec3 { return t.position }

// Matrix returns the model matrix, translation * rotation * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	rotation := t.orientation.Mat4()
	scale := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}
