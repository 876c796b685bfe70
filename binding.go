// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package deferred

import "fmt"

// Bind group indices of the geometry pass. Group 0 is shared by every
// draw in a pass, group 1 changes per draw, group 2 per material.
const (
	GeometryGroupViewProjection uint32 = 0
	GeometryGroupModel          uint32 = 1
	GeometryGroupMaterial       uint32 = 2
)

// Bindings within the geometry pass groups.
const (
	BindingViewProjection uint32 = 0 // group 0: uniform mat4
	BindingModel          uint32 = 0 // group 1: uniform mat4
	BindingDiffuseTexture uint32 = 0 // group 2: texture_2d<f32>
	BindingDiffuseSampler uint32 = 1 // group 2: sampler
)

// CompositeGroup is the single bind group of the compositing pass.
const CompositeGroup uint32 = 0

// Bindings within the compositing pass group. Normal and depth are part
// of the binding contract even though the current fragment stage reads
// only albedo.
const (
	BindingAlbedoTexture uint32 = 0
	BindingNormalTexture uint32 = 1
	BindingDepthTexture  uint32 = 2
	BindingTargetSampler uint32 = 3
)

// Vertex attribute locations of the geometry pass.
const (
	AttrPosition uint32 = 0 // vec3<f32>
	AttrNormal   uint32 = 1 // vec3<f32>
	AttrTexcoord uint32 = 2 // vec2<f32>
)

// Vertex attribute locations of the compositing pass.
const (
	AttrQuadPosition uint32 = 0 // vec2<f32>, unit square
	AttrQuadTexcoord uint32 = 1 // vec2<f32>
)

// Color attachment indices of the geometry pass.
const (
	AttachmentAlbedo = 0
	AttachmentNormal = 1
)

// ResourceKind classifies a bound resource in a contract table.
type ResourceKind int

const (
	// ResourceUniformMat4 is a 64-byte uniform buffer holding a 4x4
	// column-major float32 matrix.
	ResourceUniformMat4 ResourceKind = iota

	// ResourceTexture2D is a sampled 2D float texture.
	ResourceTexture2D

	// ResourceDepthTexture2D is a sampled 2D depth texture.
	ResourceDepthTexture2D

	// ResourceSampler is a filtering sampler.
	ResourceSampler
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceUniformMat4:
		return "UniformMat4"
	case ResourceTexture2D:
		return "Texture2D"
	case ResourceDepthTexture2D:
		return "DepthTexture2D"
	case ResourceSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// BindingSlot is one row of a binding contract table: where a resource
// is bound and what must be bound there.
type BindingSlot struct {
	Group   uint32
	Binding uint32
	Name    string
	Kind    ResourceKind

	// PerDraw marks resources rebound for every draw call. Everything
	// else is bound once per pass.
	PerDraw bool
}

// GeometryBindings returns the binding contract of the geometry pass.
// The host must bind exactly these resources at exactly these slots;
// package gbuffer derives its bind group layouts from this table.
//
// The diffuse texture and sampler are required by the textured albedo
// variant only; the flat variant leaves group 2 unbound.
func GeometryBindings() []BindingSlot {
	return []BindingSlot{
		{Group: GeometryGroupViewProjection, Binding: BindingViewProjection, Name: "view_projection", Kind: ResourceUniformMat4},
		{Group: GeometryGroupModel, Binding: BindingModel, Name: "model", Kind: ResourceUniformMat4, PerDraw: true},
		{Group: GeometryGroupMaterial, Binding: BindingDiffuseTexture, Name: "diffuse_texture", Kind: ResourceTexture2D, PerDraw: true},
		{Group: GeometryGroupMaterial, Binding: BindingDiffuseSampler, Name: "diffuse_sampler", Kind: ResourceSampler, PerDraw: true},
	}
}

// CompositeBindings returns the binding contract of the compositing
// pass. normal_texture and depth_texture are bound but unread by the
// current fragment stage; they reserve the slots a lighting pass will
// use.
func CompositeBindings() []BindingSlot {
	return []BindingSlot{
		{Group: CompositeGroup, Binding: BindingAlbedoTexture, Name: "albedo_texture", Kind: ResourceTexture2D},
		{Group: CompositeGroup, Binding: BindingNormalTexture, Name: "normal_texture", Kind: ResourceTexture2D},
		{Group: CompositeGroup, Binding: BindingDepthTexture, Name: "depth_texture", Kind: ResourceDepthTexture2D},
		{Group: CompositeGroup, Binding: BindingTargetSampler, Name: "target_sampler", Kind: ResourceSampler},
	}
}
