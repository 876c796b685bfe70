// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gbuffer

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/deferred"
)

// gpuTimeout bounds how long a frame waits on the fence.
const gpuTimeout = 5 * time.Second

// ErrNotSized is returned when a frame is rendered before Resize.
var ErrNotSized = errors.New("gbuffer: renderer has no target size")

// Renderer drives one deferred frame end to end: the geometry pass into
// the G-buffer, the compositing pass into the output texture, and the
// readback of the final pixels. Frames are strictly sequential; the
// geometry pass finishes before the compositing pass samples any
// attachment because both are recorded into the same command stream.
//
// Renderer is not safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	cfg    deferred.Config

	gbuf      *GBuffer
	geometry  *GeometryPipeline
	composite *CompositePipeline

	outputTex  hal.Texture
	outputView hal.TextureView

	width, height uint32
}

// NewRenderer builds both pipelines against the configuration. All
// shader and layout failures surface here. Resize must be called
// before the first frame.
func NewRenderer(device hal.Device, queue hal.Queue, cfg deferred.Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		device: device,
		queue:  queue,
		cfg:    cfg,
		gbuf:   NewGBuffer(device),
	}

	geometry, err := NewGeometryPipeline(device, queue, cfg)
	if err != nil {
		return nil, fmt.Errorf("geometry pipeline: %w", err)
	}
	r.geometry = geometry

	composite, err := NewCompositePipeline(device, queue)
	if err != nil {
		r.geometry.Destroy()
		return nil, fmt.Errorf("composite pipeline: %w", err)
	}
	r.composite = composite

	return r, nil
}

// MaterialLayout returns the layout materials must be built against.
// Nil for the flat variant, which takes no materials.
func (r *Renderer) MaterialLayout() hal.BindGroupLayout {
	return r.geometry.MaterialLayout()
}

// Resize allocates the G-buffer and output texture for the given
// dimensions and rebinds the compositing pass. A matching size is a
// no-op. The G-buffer and the output always share a resolution; there
// is no path that lets them diverge.
func (r *Renderer) Resize(width, height uint32) error {
	if r.width == width && r.height == height && r.outputTex != nil {
		return nil
	}

	if err := r.gbuf.Ensure(width, height); err != nil {
		return err
	}
	if err := r.composite.BindGBuffer(r.gbuf); err != nil {
		return err
	}

	r.destroyOutput()

	outputTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: "deferred_output",
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        OutputFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create output texture: %w", err)
	}
	r.outputTex = outputTex

	outputView, err := r.device.CreateTextureView(outputTex, &hal.TextureViewDescriptor{
		Label:         "deferred_output_view",
		Format:        OutputFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyOutput()
		return fmt.Errorf("create output view: %w", err)
	}
	r.outputView = outputView

	r.width = width
	r.height = height
	return nil
}

// RenderFrame executes both passes for the given camera matrix and draw
// list, then reads the composited pixels back into an RGBA image.
func (r *Renderer) RenderFrame(viewProjection mgl32.Mat4, draws []Draw) (*image.RGBA, error) {
	if r.outputTex == nil {
		return nil, ErrNotSized
	}

	r.geometry.SetViewProjection(viewProjection)

	frame, err := r.geometry.PrepareDraws(draws)
	if err != nil {
		return nil, err
	}
	defer frame.destroy(r.device)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "deferred_frame_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("deferred_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	// Geometry pass.
	clear := gputypes.Color{
		R: r.cfg.ClearColor[0],
		G: r.cfg.ClearColor[1],
		B: r.cfg.ClearColor[2],
		A: r.cfg.ClearColor[3],
	}
	rp := encoder.BeginRenderPass(r.gbuf.RenderPassDescriptor(clear))
	r.geometry.RecordDraws(rp, frame, draws)
	rp.End()

	// The compositing pass samples the attachments, so they must leave
	// the render attachment layout before the next pass begins.
	albedoTex, normalTex, depthTex := r.gbuf.Textures()
	encoder.TransitionTextures([]hal.TextureBarrier{
		{Texture: albedoTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageTextureBinding,
		}},
		{Texture: normalTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageTextureBinding,
		}},
		{Texture: depthTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageTextureBinding,
		}},
	})

	// Compositing pass.
	rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       r.outputView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	if err := r.composite.RecordDraw(rp); err != nil {
		encoder.DiscardEncoding()
		return nil, err
	}
	rp.End()

	// Return the attachments to the render attachment layout so the
	// next frame's geometry pass finds them where it expects.
	encoder.TransitionTextures([]hal.TextureBarrier{
		{Texture: albedoTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageTextureBinding,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		}},
		{Texture: normalTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageTextureBinding,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		}},
		{Texture: depthTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageTextureBinding,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		}},
		{Texture: r.outputTex, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		}},
	})

	// Copy the output to a staging buffer for readback.
	w, h := r.width, r.height
	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "deferred_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.outputTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.outputTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(out.Pix, readback)

	slogger().Debug("frame rendered", "draws", len(draws), "width", w, "height", h)
	return out, nil
}

// Size returns the current target dimensions, or (0, 0) before Resize.
func (r *Renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

// destroyOutput releases the output texture and view.
func (r *Renderer) destroyOutput() {
	if r.outputView != nil {
		r.device.DestroyTextureView(r.outputView)
		r.outputView = nil
	}
	if r.outputTex != nil {
		r.device.DestroyTexture(r.outputTex)
		r.outputTex = nil
	}
	r.width = 0
	r.height = 0
}

// Destroy releases everything the renderer owns. Meshes and materials
// belong to the caller and are not touched.
func (r *Renderer) Destroy() {
	r.destroyOutput()
	if r.composite != nil {
		r.composite.Destroy()
	}
	if r.geometry != nil {
		r.geometry.Destroy()
	}
	if r.gbuf != nil {
		r.gbuf.Destroy()
	}
}
