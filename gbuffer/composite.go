// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gbuffer

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/deferred"
)

// OutputFormat is the pixel format of the compositing pass target.
const OutputFormat = gputypes.TextureFormatRGBA8Unorm

// ErrGBufferNotReady is returned when the compositing pass is bound to
// a G-buffer whose attachments have not been allocated.
var ErrGBufferNotReady = errors.New("gbuffer: attachments not allocated")

// CompositePipeline owns the fullscreen compositing pass: a unit-square
// quad, the pipeline that stretches it over the whole target, and the
// bind group that exposes the G-buffer attachments to the fragment
// stage. All three attachments are bound even though only albedo is
// read today; the slots are part of the contract.
type CompositePipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	sampler hal.Sampler
	quadBuf hal.Buffer

	bindGroup hal.BindGroup
	quadCount uint32
}

// NewCompositePipeline builds the compositing pipeline and uploads the
// fullscreen quad. BindGBuffer must be called before recording.
func NewCompositePipeline(device hal.Device, queue hal.Queue) (*CompositePipeline, error) {
	if err := ValidateShaders(); err != nil {
		return nil, err
	}

	p := &CompositePipeline{device: device, queue: queue}
	if err := p.createPipeline(); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.createQuad(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// createPipeline compiles the composite shader and creates the bind
// layout, sampler, pipeline layout and render pipeline. The pass has no
// depth attachment; ordering is irrelevant for a single quad.
func (p *CompositePipeline) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "composite_shader",
		Source: hal.ShaderSource{WGSL: compositeShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile composite shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "composite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    deferred.BindingAlbedoTexture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    deferred.BindingNormalTexture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    deferred.BindingDepthTexture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeDepth,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    deferred.BindingTargetSampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "composite_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create composite sampler: %w", err)
	}
	p.sampler = sampler

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "composite_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: compositeVertexEntry,
			Buffers:    deferred.CompositeVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: compositeFragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    OutputFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// createQuad uploads the fullscreen quad vertex buffer.
func (p *CompositePipeline) createQuad() error {
	quad := deferred.FullscreenQuad()
	data := deferred.EncodeFullscreenVertices(quad)

	quadBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "composite_quad",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad buffer: %w", err)
	}
	p.quadBuf = quadBuf
	p.quadCount = uint32(len(quad))
	p.queue.WriteBuffer(quadBuf, 0, data)
	return nil
}

// BindGBuffer rebuilds the bind group against the given G-buffer's
// attachments. Must be called after every Ensure that reallocates the
// attachments; stale views would sample freed textures.
func (p *CompositePipeline) BindGBuffer(gb *GBuffer) error {
	if gb.AlbedoView() == nil || gb.NormalView() == nil || gb.DepthView() == nil {
		return ErrGBufferNotReady
	}

	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "composite_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: deferred.BindingAlbedoTexture,
				Resource: gputypes.TextureViewBinding{
					TextureView: gb.AlbedoView().NativeHandle(),
				},
			},
			{
				Binding: deferred.BindingNormalTexture,
				Resource: gputypes.TextureViewBinding{
					TextureView: gb.NormalView().NativeHandle(),
				},
			},
			{
				Binding: deferred.BindingDepthTexture,
				Resource: gputypes.TextureViewBinding{
					TextureView: gb.DepthView().NativeHandle(),
				},
			},
			{
				Binding: deferred.BindingTargetSampler,
				Resource: gputypes.SamplerBinding{
					Sampler: p.sampler.NativeHandle(),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind group: %w", err)
	}
	p.bindGroup = bindGroup
	return nil
}

// RecordDraw records the fullscreen quad draw into an open render pass.
// BindGBuffer must have succeeded since the last G-buffer reallocation.
func (p *CompositePipeline) RecordDraw(rp hal.RenderPassEncoder) error {
	if p.bindGroup == nil {
		return ErrGBufferNotReady
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(deferred.CompositeGroup, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.quadBuf, 0)
	rp.Draw(p.quadCount, 1, 0, 0)
	return nil
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call multiple times or on a partially constructed pipeline.
func (p *CompositePipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.quadBuf != nil {
		p.device.DestroyBuffer(p.quadBuf)
		p.quadBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
