// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gbuffer executes the deferred shading stages on a wgpu HAL
// device: a geometry pass that fills the G-buffer and a compositing
// pass that reads it back out to a final image.
//
// The binding and attachment contract lives in the parent package;
// everything here is keyed to those tables.
package gbuffer

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// G-buffer attachment formats. Albedo and normal are renderable and
// sampleable; depth doubles as the geometry pass depth buffer and a
// sampleable input for the compositing pass.
const (
	AlbedoFormat = gputypes.TextureFormatRGBA8Unorm
	NormalFormat = gputypes.TextureFormatRGBA8Unorm
	DepthFormat  = gputypes.TextureFormatDepth32Float
)

// GBuffer owns the three screen-sized attachments written by the
// geometry pass and sampled by the compositing pass. Textures are
// recreated on resize via Ensure.
type GBuffer struct {
	device hal.Device

	albedoTex  hal.Texture
	albedoView hal.TextureView

	normalTex  hal.Texture
	normalView hal.TextureView

	depthTex  hal.Texture
	depthView hal.TextureView

	width, height uint32
}

// NewGBuffer creates an empty G-buffer. Textures are not allocated
// until Ensure is called with the target dimensions.
func NewGBuffer(device hal.Device) *GBuffer {
	return &GBuffer{device: device}
}

// Ensure creates or recreates the attachments if the requested
// dimensions differ from the current size. A matching size is a no-op.
//
// On failure, partially created resources are released and the G-buffer
// is left unallocated.
func (g *GBuffer) Ensure(width, height uint32) error {
	if g.width == width && g.height == height && g.albedoTex != nil {
		return nil
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("gbuffer: invalid size %dx%d", width, height)
	}

	g.destroyTextures()

	size := hal.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}

	var err error
	g.albedoTex, g.albedoView, err = g.createAttachment("gbuffer_albedo", size, AlbedoFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopySrc)
	if err != nil {
		g.destroyTextures()
		return err
	}

	g.normalTex, g.normalView, err = g.createAttachment("gbuffer_normal", size, NormalFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopySrc)
	if err != nil {
		g.destroyTextures()
		return err
	}

	g.depthTex, g.depthView, err = g.createAttachment("gbuffer_depth", size, DepthFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding)
	if err != nil {
		g.destroyTextures()
		return err
	}

	g.width = width
	g.height = height
	slogger().Debug("gbuffer allocated", "width", width, "height", height)
	return nil
}

// createAttachment creates one texture and its full view.
func (g *GBuffer) createAttachment(label string, size hal.Extent3D, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := g.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}

	view, err := g.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		g.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

// Destroy releases all attachments. Safe to call multiple times.
func (g *GBuffer) Destroy() {
	g.destroyTextures()
}

// destroyTextures releases views and textures, resetting dimensions.
// Each resource is nil-checked to support partial cleanup.
func (g *GBuffer) destroyTextures() {
	if g.depthView != nil {
		g.device.DestroyTextureView(g.depthView)
		g.depthView = nil
	}
	if g.depthTex != nil {
		g.device.DestroyTexture(g.depthTex)
		g.depthTex = nil
	}
	if g.normalView != nil {
		g.device.DestroyTextureView(g.normalView)
		g.normalView = nil
	}
	if g.normalTex != nil {
		g.device.DestroyTexture(g.normalTex)
		g.normalTex = nil
	}
	if g.albedoView != nil {
		g.device.DestroyTextureView(g.albedoView)
		g.albedoView = nil
	}
	if g.albedoTex != nil {
		g.device.DestroyTexture(g.albedoTex)
		g.albedoTex = nil
	}
	g.width = 0
	g.height = 0
}

// RenderPassDescriptor returns the geometry pass descriptor: albedo at
// attachment 0, normal at attachment 1, both cleared to clearColor, and
// the depth attachment cleared to 1.0. The attachment contents are
// stored so the compositing pass can sample them.
//
// Returns nil if Ensure has not allocated the attachments.
func (g *GBuffer) RenderPassDescriptor(clearColor gputypes.Color) *hal.RenderPassDescriptor {
	if g.albedoView == nil || g.normalView == nil || g.depthView == nil {
		return nil
	}
	return &hal.RenderPassDescriptor{
		Label: "geometry_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       g.albedoView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearColor,
			},
			{
				View:       g.normalView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            g.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}
}

// AlbedoView returns the albedo attachment view, or nil before Ensure.
func (g *GBuffer) AlbedoView() hal.TextureView { return g.albedoView }

// NormalView returns the normal attachment view, or nil before Ensure.
func (g *GBuffer) NormalView() hal.TextureView { return g.normalView }

// DepthView returns the depth attachment view, or nil before Ensure.
func (g *GBuffer) DepthView() hal.TextureView { return g.depthView }

// Textures returns the albedo, normal and depth textures for barrier
// and copy operations. Entries are nil before Ensure.
func (g *GBuffer) Textures() (albedo, normal, depth hal.Texture) {
	return g.albedoTex, g.normalTex, g.depthTex
}

// Size returns the current attachment dimensions, or (0, 0) before
// Ensure.
func (g *GBuffer) Size() (uint32, uint32) {
	return g.width, g.height
}
