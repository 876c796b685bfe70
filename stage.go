// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// This file holds CPU reference implementations of the four shader
// stages. Each function mirrors its WGSL entry point in
// gbuffer/shaders/ exactly; any change must be made in both places.

// GeometryVaryings is the geometry vertex stage output: the clip-space
// position plus the attributes interpolated across the triangle for the
// fragment stage.
type GeometryVaryings struct {
	Clip     mgl32.Vec4
	Normal   mgl32.Vec3
	Texcoord mgl32.Vec2
}

// GeometryVertex transforms one vertex to clip space. Mirrors vs_main:
//
//	clip = model * view_projection * vec4(position, 1.0)
//
// The multiplication order is a fixed contract with the host's matrix
// layout; swapping the factors silently breaks every draw. Normal and
// texcoord pass through unmodified.
func GeometryVertex(v Vertex, model, viewProjection mgl32.Mat4) GeometryVaryings {
	pos := mgl32.Vec4{v.Position[0], v.Position[1], v.Position[2], 1}
	return GeometryVaryings{
		Clip:     model.Mul4(viewProjection).Mul4x1(pos),
		Normal:   mgl32.Vec3{v.Normal[0], v.Normal[1], v.Normal[2]},
		Texcoord: mgl32.Vec2{v.Texcoord[0], v.Texcoord[1]},
	}
}

// GeometryVertexRemapped is the coordinate adapter variant of
// GeometryVertex. Mirrors vs_main_remap: the position is passed through
// RemapAxes before projection; the normal is not remapped (see
// RemapAxes).
func GeometryVertexRemapped(v Vertex, model, viewProjection mgl32.Mat4) GeometryVaryings {
	p := RemapAxes(mgl32.Vec3{v.Position[0], v.Position[1], v.Position[2]})
	remapped := v
	remapped.Position = [3]float32{p.X(), p.Y(), p.Z()}
	return GeometryVertex(remapped, model, viewProjection)
}

// GBufferSample is the geometry fragment stage output: one value per
// color attachment.
type GBufferSample struct {
	Albedo mgl32.Vec4 // attachment 0
	Normal mgl32.Vec4 // attachment 1, rgb = normal, a = 1.0
}

// FlatAlbedo is the constant albedo written by the flat (debug)
// fragment variant.
var FlatAlbedo = mgl32.Vec4{1, 0, 0, 1}

// GeometryFragmentFlat mirrors fs_flat: constant debug albedo, normal
// written as vec4(normal, 1.0). The interpolated normal is stored
// without renormalization; barycentric interpolation can shorten it and
// this stage keeps that.
func GeometryFragmentFlat(normal mgl32.Vec3, _ mgl32.Vec2) GBufferSample {
	return GBufferSample{
		Albedo: FlatAlbedo,
		Normal: mgl32.Vec4{normal.X(), normal.Y(), normal.Z(), 1},
	}
}

// GeometryFragmentTextured mirrors fs_main: albedo sampled from the
// diffuse texture at the interpolated texcoord, normal written as
// vec4(normal, 1.0).
func GeometryFragmentTextured(diffuse Sampler2D, normal mgl32.Vec3, texcoord mgl32.Vec2) GBufferSample {
	return GBufferSample{
		Albedo: diffuse.Sample(texcoord.X(), texcoord.Y()),
		Normal: mgl32.Vec4{normal.X(), normal.Y(), normal.Z(), 1},
	}
}

// CompositeVaryings is the compositing vertex stage output.
type CompositeVaryings struct {
	Clip     mgl32.Vec4
	Texcoord mgl32.Vec2
}

// CompositeVertex maps a unit-square vertex to the fullscreen clip-space
// quad. Mirrors composite vs_main:
//
//	clip.xy = position*2 - 1, clip.z = 0, clip.w = 1
//
// The host must supply [0,1] unit-square positions, not NDC.
func CompositeVertex(v FullscreenVertex) CompositeVaryings {
	return CompositeVaryings{
		Clip:     mgl32.Vec4{v.Position[0]*2 - 1, v.Position[1]*2 - 1, 0, 1},
		Texcoord: mgl32.Vec2{v.Texcoord[0], v.Texcoord[1]},
	}
}

// CompositeFragment mirrors composite fs_main: the sampled albedo is
// returned unmodified. No blending, no gamma adjustment. The normal and
// depth attachments are bound but unread in this scope.
func CompositeFragment(albedo Sampler2D, texcoord mgl32.Vec2) mgl32.Vec4 {
	return albedo.Sample(texcoord.X(), texcoord.Y())
}

// Sampler2D samples a texture at normalized coordinates. Out-of-range
// coordinates follow the implementation's addressing mode, matching the
// external sampler contract.
type Sampler2D interface {
	Sample(u, v float32) mgl32.Vec4
}

// ImageSampler is a nearest-neighbor, clamp-to-edge Sampler2D over a
// CPU image, for use with the reference stages.
type ImageSampler struct {
	img *image.RGBA
}

// NewImageSampler wraps an RGBA image as a sampler.
func NewImageSampler(img *image.RGBA) *ImageSampler {
	return &ImageSampler{img: img}
}

// Sample returns the texel nearest to (u, v), clamped to the image
// edges, with channels normalized to [0, 1].
func (s *ImageSampler) Sample(u, v float32) mgl32.Vec4 {
	b := s.img.Bounds()
	w, h := b.Dx(), b.Dy()
	x := int(math32.Floor(u * float32(w)))
	y := int(math32.Floor(v * float32(h)))
	x = clampInt(x, 0, w-1)
	y = clampInt(y, 0, h-1)

	c := s.img.RGBAAt(b.Min.X+x, b.Min.Y+y)
	return mgl32.Vec4{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
