// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// VertexStride is the byte stride per geometry pass vertex.
// Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
//	normal   (vec3<f32>) = 12 bytes (location 1)
//	texcoord (vec2<f32>) =  8 bytes (location 2)
//
// Total = 32 bytes per vertex.
const VertexStride = 32

// FullscreenVertexStride is the byte stride per compositing pass vertex.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes (location 0)
//	texcoord (vec2<f32>) = 8 bytes (location 1)
//
// Total = 16 bytes per vertex.
const FullscreenVertexStride = 16

// Mat4Size is the byte size of an encoded 4x4 float32 matrix uniform.
const Mat4Size = 64

// Vertex is the geometry pass input. Position and normal are in object
// space; the normal is passed through the pipeline verbatim, so correct
// shading requires an orthonormal model matrix (non-uniform scale will
// skew normals, a known limitation of this contract).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Texcoord [2]float32
}

// FullscreenVertex is the compositing pass input. Position is in the
// normalized [0,1] unit square, not clip space; the vertex stage maps
// it to clip space via p*2-1.
type FullscreenVertex struct {
	Position [2]float32
	Texcoord [2]float32
}

// GeometryVertexLayout returns the vertex buffer layout of the geometry
// pass. Matches VertexInput in gbuffer/shaders/geometry.wgsl.
func GeometryVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: AttrPosition},
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: AttrNormal},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: AttrTexcoord},
			},
		},
	}
}

// CompositeVertexLayout returns the vertex buffer layout of the
// compositing pass. Matches VertexInput in
// gbuffer/shaders/composite.wgsl.
func CompositeVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: FullscreenVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: AttrQuadPosition},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: AttrQuadTexcoord},
			},
		},
	}
}

// FullscreenQuad returns the six vertices of the unit-square quad the
// compositing pass draws, as two counter-clockwise triangles. Texture
// coordinates equal positions, so the albedo attachment maps 1:1 onto
// the target.
func FullscreenQuad() []FullscreenVertex {
	return []FullscreenVertex{
		{Position: [2]float32{0, 0}, Texcoord: [2]float32{0, 0}},
		{Position: [2]float32{1, 0}, Texcoord: [2]float32{1, 0}},
		{Position: [2]float32{1, 1}, Texcoord: [2]float32{1, 1}},
		{Position: [2]float32{1, 1}, Texcoord: [2]float32{1, 1}},
		{Position: [2]float32{0, 1}, Texcoord: [2]float32{0, 1}},
		{Position: [2]float32{0, 0}, Texcoord: [2]float32{0, 0}},
	}
}

// EncodeVertices serializes vertices for GPU upload, little-endian,
// matching GeometryVertexLayout.
func EncodeVertices(verts []Vertex) []byte {
	buf := make([]byte, 0, len(verts)*VertexStride)
	for _, v := range verts {
		buf = putFloats(buf, v.Position[:])
		buf = putFloats(buf, v.Normal[:])
		buf = putFloats(buf, v.Texcoord[:])
	}
	return buf
}

// EncodeFullscreenVertices serializes quad vertices for GPU upload,
// little-endian, matching CompositeVertexLayout.
func EncodeFullscreenVertices(verts []FullscreenVertex) []byte {
	buf := make([]byte, 0, len(verts)*FullscreenVertexStride)
	for _, v := range verts {
		buf = putFloats(buf, v.Position[:])
		buf = putFloats(buf, v.Texcoord[:])
	}
	return buf
}

// EncodeIndices serializes triangle indices as little-endian uint32.
func EncodeIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// EncodeMat4 serializes a matrix for a uniform buffer, column-major
// little-endian float32, as WGSL mat4x4<f32> expects.
func EncodeMat4(m mgl32.Mat4) []byte {
	buf := make([]byte, 0, Mat4Size)
	return putFloats(buf, m[:])
}

func putFloats(buf []byte, vals []float32) []byte {
	for _, f := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}
