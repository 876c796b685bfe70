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

// Mesh upload errors.
var (
	// ErrEmptyMesh is returned for a mesh with no vertices or no indices.
	ErrEmptyMesh = errors.New("gbuffer: empty mesh")

	// ErrIndexOutOfRange is returned when an index references a vertex
	// beyond the vertex slice.
	ErrIndexOutOfRange = errors.New("gbuffer: index out of range")
)

// Mesh holds the uploaded vertex and index buffers for one geometry
// draw. Meshes are immutable after upload.
type Mesh struct {
	device hal.Device

	vertexBuf hal.Buffer
	indexBuf  hal.Buffer

	indexCount uint32
}

// NewMesh validates and uploads indexed geometry. Indices are 32-bit
// and address into verts; out-of-range indices are rejected here rather
// than trapped on the device.
func NewMesh(device hal.Device, queue hal.Queue, verts []deferred.Vertex, indices []uint32) (*Mesh, error) {
	if len(verts) == 0 || len(indices) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, idx := range indices {
		if idx >= uint32(len(verts)) {
			return nil, fmt.Errorf("%w: indices[%d] = %d, have %d vertices", ErrIndexOutOfRange, i, idx, len(verts))
		}
	}

	vertexData := deferred.EncodeVertices(verts)
	vertexBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mesh_vertices",
		Size:  uint64(len(vertexData)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	queue.WriteBuffer(vertexBuf, 0, vertexData)

	indexData := deferred.EncodeIndices(indices)
	indexBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mesh_indices",
		Size:  uint64(len(indexData)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(vertexBuf)
		return nil, fmt.Errorf("create index buffer: %w", err)
	}
	queue.WriteBuffer(indexBuf, 0, indexData)

	return &Mesh{
		device:     device,
		vertexBuf:  vertexBuf,
		indexBuf:   indexBuf,
		indexCount: uint32(len(indices)),
	}, nil
}

// IndexCount returns the number of indices to draw.
func (m *Mesh) IndexCount() uint32 { return m.indexCount }

// Destroy releases the GPU buffers. Safe to call multiple times.
func (m *Mesh) Destroy() {
	if m.indexBuf != nil {
		m.device.DestroyBuffer(m.indexBuf)
		m.indexBuf = nil
	}
	if m.vertexBuf != nil {
		m.device.DestroyBuffer(m.vertexBuf)
		m.vertexBuf = nil
	}
}
