// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gbuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/deferred"
)

// Geometry draw validation errors.
var (
	// ErrNilMesh is returned when a draw carries no mesh.
	ErrNilMesh = errors.New("gbuffer: draw has nil mesh")

	// ErrMissingMaterial is returned when the textured variant receives
	// a draw without a material.
	ErrMissingMaterial = errors.New("gbuffer: textured draw has nil material")
)

// Draw is one geometry pass draw call: a mesh, its model matrix, and
// for the textured variant a material. The flat variant ignores
// Material.
type Draw struct {
	Mesh     *Mesh
	Material *Material
	Model    mgl32.Mat4
}

// GeometryPipeline owns the geometry pass render pipeline and the
// per-pass ViewProjection uniform. The entry points are fixed at
// construction from the configuration: RemapAxes selects the vertex
// entry, Variant selects the fragment entry and whether the material
// bind group participates in the layout.
type GeometryPipeline struct {
	device hal.Device
	queue  hal.Queue
	cfg    deferred.Config

	shader hal.ShaderModule

	vpLayout       hal.BindGroupLayout
	modelLayout    hal.BindGroupLayout
	materialLayout hal.BindGroupLayout

	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	vpBuf       hal.Buffer
	vpBindGroup hal.BindGroup
}

// NewGeometryPipeline validates the configuration and shaders, then
// builds the full pipeline. All shader and layout errors surface here,
// before any frame is recorded.
func NewGeometryPipeline(device hal.Device, queue hal.Queue, cfg deferred.Config) (*GeometryPipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateShaders(); err != nil {
		return nil, err
	}

	p := &GeometryPipeline{device: device, queue: queue, cfg: cfg}
	if err := p.createPipeline(); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.createViewProjection(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// createPipeline compiles the geometry shader and creates the bind
// group layouts, pipeline layout and render pipeline.
func (p *GeometryPipeline) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "geometry_shader",
		Source: hal.ShaderSource{WGSL: geometryShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile geometry shader: %w", err)
	}
	p.shader = shader

	// Group 0: the per-pass ViewProjection uniform.
	vpLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "geometry_vp_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    deferred.BindingViewProjection,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create view projection layout: %w", err)
	}
	p.vpLayout = vpLayout

	// Group 1: the per-draw ModelTransform uniform.
	modelLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "geometry_model_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    deferred.BindingModel,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create model layout: %w", err)
	}
	p.modelLayout = modelLayout

	groups := []hal.BindGroupLayout{p.vpLayout, p.modelLayout}

	// Group 2 exists only for the textured variant; fs_flat never
	// references it.
	if p.cfg.Variant == deferred.VariantTextured {
		materialLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: "geometry_material_layout",
			Entries: []gputypes.BindGroupLayoutEntry{
				{
					Binding:    deferred.BindingDiffuseTexture,
					Visibility: gputypes.ShaderStageFragment,
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: gputypes.TextureViewDimension2D,
					},
				},
				{
					Binding:    deferred.BindingDiffuseSampler,
					Visibility: gputypes.ShaderStageFragment,
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create material layout: %w", err)
		}
		p.materialLayout = materialLayout
		groups = append(groups, p.materialLayout)
	}

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "geometry_pipe_layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		return fmt.Errorf("create geometry pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	vertexEntry := geometryVertexEntry
	if p.cfg.RemapAxes {
		vertexEntry = geometryVertexRemapEntry
	}
	fragmentEntry := geometryFragmentEntry
	if p.cfg.Variant == deferred.VariantFlat {
		fragmentEntry = geometryFragmentFlat
	}

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "geometry_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: vertexEntry,
			Buffers:    deferred.GeometryVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    AlbedoFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
				{
					Format:    NormalFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create geometry pipeline: %w", err)
	}
	p.pipeline = pipeline

	slogger().Debug("geometry pipeline created",
		"variant", p.cfg.Variant, "vertex_entry", vertexEntry)
	return nil
}

// createViewProjection allocates the per-pass uniform buffer and its
// bind group. The buffer is written once per frame via
// SetViewProjection.
func (p *GeometryPipeline) createViewProjection() error {
	vpBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "geometry_vp_uniform",
		Size:  deferred.Mat4Size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create view projection buffer: %w", err)
	}
	p.vpBuf = vpBuf

	vpBindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "geometry_vp_bind",
		Layout: p.vpLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: deferred.BindingViewProjection, Resource: gputypes.BufferBinding{
				Buffer: vpBuf.NativeHandle(), Offset: 0, Size: deferred.Mat4Size,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create view projection bind group: %w", err)
	}
	p.vpBindGroup = vpBindGroup
	return nil
}

// MaterialLayout returns the bind group layout that materials must be
// built against. Returns nil for the flat variant.
func (p *GeometryPipeline) MaterialLayout() hal.BindGroupLayout {
	return p.materialLayout
}

// SetViewProjection uploads the per-pass camera matrix. Must not be
// called while a pass using the pipeline is being recorded.
func (p *GeometryPipeline) SetViewProjection(vp mgl32.Mat4) {
	p.queue.WriteBuffer(p.vpBuf, 0, deferred.EncodeMat4(vp))
}

// geometryFrame holds the per-draw uniform buffers and bind groups for
// one frame. Released via destroy after the frame's commands complete.
type geometryFrame struct {
	modelBufs  []hal.Buffer
	modelBinds []hal.BindGroup
}

// PrepareDraws validates the draw list and builds the per-draw model
// uniforms. Each draw gets its own buffer so all model matrices are
// resident before the pass is recorded; writing one shared buffer
// between draw calls inside a pass would race on the GPU timeline.
func (p *GeometryPipeline) PrepareDraws(draws []Draw) (*geometryFrame, error) {
	for i := range draws {
		if draws[i].Mesh == nil {
			return nil, fmt.Errorf("%w: draw %d", ErrNilMesh, i)
		}
		if p.cfg.Variant == deferred.VariantTextured && draws[i].Material == nil {
			return nil, fmt.Errorf("%w: draw %d", ErrMissingMaterial, i)
		}
	}

	frame := &geometryFrame{
		modelBufs:  make([]hal.Buffer, 0, len(draws)),
		modelBinds: make([]hal.BindGroup, 0, len(draws)),
	}

	for i := range draws {
		buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "geometry_model_uniform",
			Size:  deferred.Mat4Size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			frame.destroy(p.device)
			return nil, fmt.Errorf("create model buffer %d: %w", i, err)
		}
		frame.modelBufs = append(frame.modelBufs, buf)
		p.queue.WriteBuffer(buf, 0, deferred.EncodeMat4(draws[i].Model))

		bind, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "geometry_model_bind",
			Layout: p.modelLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: deferred.BindingModel, Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(), Offset: 0, Size: deferred.Mat4Size,
				}},
			},
		})
		if err != nil {
			frame.destroy(p.device)
			return nil, fmt.Errorf("create model bind group %d: %w", i, err)
		}
		frame.modelBinds = append(frame.modelBinds, bind)
	}

	return frame, nil
}

// RecordDraws records all geometry draws into an open render pass.
// frame must come from PrepareDraws with the same draw list.
func (p *GeometryPipeline) RecordDraws(rp hal.RenderPassEncoder, frame *geometryFrame, draws []Draw) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(deferred.GeometryGroupViewProjection, p.vpBindGroup, nil)

	for i := range draws {
		rp.SetBindGroup(deferred.GeometryGroupModel, frame.modelBinds[i], nil)
		if p.cfg.Variant == deferred.VariantTextured {
			rp.SetBindGroup(deferred.GeometryGroupMaterial, draws[i].Material.BindGroup(), nil)
		}
		rp.SetVertexBuffer(0, draws[i].Mesh.vertexBuf, 0)
		rp.SetIndexBuffer(draws[i].Mesh.indexBuf, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(draws[i].Mesh.indexCount, 1, 0, 0, 0)
	}
}

// destroy releases the frame's buffers and bind groups.
func (f *geometryFrame) destroy(device hal.Device) {
	for _, b := range f.modelBinds {
		if b != nil {
			device.DestroyBindGroup(b)
		}
	}
	f.modelBinds = nil
	for _, b := range f.modelBufs {
		if b != nil {
			device.DestroyBuffer(b)
		}
	}
	f.modelBufs = nil
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call multiple times or on a partially constructed pipeline.
func (p *GeometryPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.vpBindGroup != nil {
		p.device.DestroyBindGroup(p.vpBindGroup)
		p.vpBindGroup = nil
	}
	if p.vpBuf != nil {
		p.device.DestroyBuffer(p.vpBuf)
		p.vpBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.materialLayout != nil {
		p.device.DestroyBindGroupLayout(p.materialLayout)
		p.materialLayout = nil
	}
	if p.modelLayout != nil {
		p.device.DestroyBindGroupLayout(p.modelLayout)
		p.modelLayout = nil
	}
	if p.vpLayout != nil {
		p.device.DestroyBindGroupLayout(p.vpLayout)
		p.vpLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
