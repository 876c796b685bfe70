// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gbuffer

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device acquisition errors.
var (
	// ErrNoBackend is returned when no GPU backend is compiled in.
	ErrNoBackend = errors.New("gbuffer: no GPU backend available")

	// ErrNoAdapter is returned when the backend exposes no usable GPU.
	ErrNoAdapter = errors.New("gbuffer: no GPU adapter found")
)

// GPUContext owns the hal instance and device a Renderer runs on.
// Hosts that already manage a device can skip this and pass their own
// hal.Device and hal.Queue to NewRenderer.
type GPUContext struct {
	instance    hal.Instance
	device      hal.Device
	queue       hal.Queue
	adapterName string
}

// OpenGPU creates an instance, picks an adapter (preferring a discrete
// or integrated GPU) and opens a device on it.
func OpenGPU() (*GPUContext, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gbuffer: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gbuffer: open device: %w", err)
	}

	slogger().Info("GPU device opened", "adapter", selected.Info.Name)
	return &GPUContext{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}, nil
}

// Device returns the opened device.
func (c *GPUContext) Device() hal.Device { return c.device }

// Queue returns the device's queue.
func (c *GPUContext) Queue() hal.Queue { return c.queue }

// AdapterName returns the name of the selected adapter.
func (c *GPUContext) AdapterName() string { return c.adapterName }

// Close releases the device and the instance. Destroy all renderers and
// resources created on the device first.
func (c *GPUContext) Close() {
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
		c.queue = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}
