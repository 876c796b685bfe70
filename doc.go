// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package deferred defines the data contract of a two-pass deferred
// rendering pipeline: a geometry pass that rasterizes meshes into a
// multi-attachment G-buffer (albedo, normal, depth), and a compositing
// pass that reads the finished G-buffer to produce the final pixel.
//
// The package deliberately contains no GPU code. It holds the parts of
// the pipeline that both sides of the G-buffer must agree on, expressed
// once and consumed everywhere:
//
//   - Vertex and FullscreenVertex: the per-vertex attribute layouts of
//     the two passes, with their wgpu vertex buffer descriptions and
//     GPU-upload encoding.
//   - The binding contract: every bind group, binding and attachment
//     index as named constants plus machine-readable contract tables.
//     These numbers are a bit-exact agreement with the host's pipeline
//     state; a mismatch is a silent correctness bug, so they live here
//     and nowhere else.
//   - RemapAxes: the coordinate convention adapter applied to source
//     asset positions on their way into the geometry vertex stage.
//   - CPU reference implementations of all four shader stages. These
//     mirror the WGSL entry points in package gbuffer exactly and give
//     hosts and tests a way to evaluate the pipeline's math without a
//     device.
//   - Transform and Camera, the producers of the ModelTransform and
//     ViewProjection uniforms.
//
// Package gbuffer implements the same contract on a GPU via
// github.com/gogpu/wgpu.
//
// # Execution model
//
// Every stage is a pure function from bound inputs to outputs, invoked
// massively in parallel by the rasterizer (once per vertex, once per
// covered pixel). There is no shared mutable state between invocations
// and therefore no synchronization at this layer. The one ordering
// guarantee (geometry pass writes complete before the compositing pass
// reads) is the render-pass boundary, owned by whoever encodes the
// frame.
package deferred
