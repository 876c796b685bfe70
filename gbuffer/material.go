// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gbuffer

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"
)

// ErrEmptyTexture is returned for a diffuse image with zero area.
var ErrEmptyTexture = errors.New("gbuffer: empty texture image")

// Material holds the diffuse texture, its sampler and the bind group
// for the geometry pass material slot. The textured pipeline variant
// requires one per draw; the flat variant ignores materials entirely.
type Material struct {
	device hal.Device

	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler

	bindGroup hal.BindGroup
}

// NewMaterial uploads img as the diffuse texture and builds the bind
// group against the geometry pipeline's material layout. Non-RGBA
// images are converted on the CPU before upload.
//
// The sampler clamps to edge and filters magnification linearly with
// nearest minification, matching the look of low-resolution diffuse
// maps when upscaled.
func NewMaterial(device hal.Device, queue hal.Queue, layout hal.BindGroupLayout, img image.Image) (*Material, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyTexture
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds() != image.Rect(0, 0, w, h) {
		converted := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.Copy(converted, image.Point{}, img, bounds, xdraw.Src, nil)
		rgba = converted
	}

	m := &Material{device: device}

	texture, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "material_diffuse",
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create diffuse texture: %w", err)
	}
	m.texture = texture

	queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: texture, MipLevel: 0},
		rgba.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rgba.Stride),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)

	view, err := device.CreateTextureView(texture, &hal.TextureViewDescriptor{
		Label:         "material_diffuse_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		m.Destroy()
		return nil, fmt.Errorf("create diffuse view: %w", err)
	}
	m.view = view

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "material_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		m.Destroy()
		return nil, fmt.Errorf("create material sampler: %w", err)
	}
	m.sampler = sampler

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "material_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.TextureViewBinding{
					TextureView: view.NativeHandle(),
				},
			},
			{
				Binding: 1,
				Resource: gputypes.SamplerBinding{
					Sampler: sampler.NativeHandle(),
				},
			},
		},
	})
	if err != nil {
		m.Destroy()
		return nil, fmt.Errorf("create material bind group: %w", err)
	}
	m.bindGroup = bindGroup

	return m, nil
}

// BindGroup returns the material bind group for the geometry pass.
func (m *Material) BindGroup() hal.BindGroup { return m.bindGroup }

// Destroy releases all material resources. Safe to call multiple times
// or on a partially constructed material.
func (m *Material) Destroy() {
	if m.bindGroup != nil {
		m.device.DestroyBindGroup(m.bindGroup)
		m.bindGroup = nil
	}
	if m.sampler != nil {
		m.device.DestroySampler(m.sampler)
		m.sampler = nil
	}
	if m.view != nil {
		m.device.DestroyTextureView(m.view)
		m.view = nil
	}
	if m.texture != nil {
		m.device.DestroyTexture(m.texture)
		m.texture = nil
	}
}
