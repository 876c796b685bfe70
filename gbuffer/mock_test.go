package gbuffer

import (
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// mockHALDevice is a test double for hal.Device. Create calls return
// mock resources and record their descriptors so tests can verify the
// layouts and pipelines a constructor produced.
type mockHALDevice struct {
	createTextureFunc func(*hal.TextureDescriptor) (hal.Texture, error)
	createBufferFunc  func(*hal.BufferDescriptor) (hal.Buffer, error)

	// Recorded descriptors for verification.
	textureDescs    []*hal.TextureDescriptor
	bufferDescs     []*hal.BufferDescriptor
	layoutDescs     []*hal.BindGroupLayoutDescriptor
	bindGroupDescs  []*hal.BindGroupDescriptor
	pipelineDescs   []*hal.RenderPipelineDescriptor
	pipeLayoutDescs []*hal.PipelineLayoutDescriptor
	shaderDescs     []*hal.ShaderModuleDescriptor
	samplerDescs    []*hal.SamplerDescriptor

	// Destruction counters.
	texturesDestroyed int32
	viewsDestroyed    int32
	buffersDestroyed  int32
	bindGroupsFreed   int32
	layoutsFreed      int32
	pipelinesFreed    int32
	pipeLayoutsFreed  int32
	shadersFreed      int32
	samplersFreed     int32
}

func (d *mockHALDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.createBufferFunc != nil {
		return d.createBufferFunc(desc)
	}
	d.bufferDescs = append(d.bufferDescs, desc)
	return &mockHALBuffer{size: desc.Size}, nil
}

func (d *mockHALDevice) DestroyBuffer(_ hal.Buffer) {
	atomic.AddInt32(&d.buffersDestroyed, 1)
}

func (d *mockHALDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.createTextureFunc != nil {
		return d.createTextureFunc(desc)
	}
	d.textureDescs = append(d.textureDescs, desc)
	return &mockHALTexture{
		width:  desc.Size.Width,
		height: desc.Size.Height,
		format: desc.Format,
	}, nil
}

func (d *mockHALDevice) DestroyTexture(_ hal.Texture) {
	atomic.AddInt32(&d.texturesDestroyed, 1)
}

func (d *mockHALDevice) CreateTextureView(texture hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	return &mockHALTextureView{texture: texture, label: desc.Label}, nil
}

func (d *mockHALDevice) DestroyTextureView(_ hal.TextureView) {
	atomic.AddInt32(&d.viewsDestroyed, 1)
}

func (d *mockHALDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	d.samplerDescs = append(d.samplerDescs, desc)
	return &mockHALSampler{}, nil
}

func (d *mockHALDevice) DestroySampler(_ hal.Sampler) {
	atomic.AddInt32(&d.samplersFreed, 1)
}

func (d *mockHALDevice) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	d.layoutDescs = append(d.layoutDescs, desc)
	return &mockHALHandle{}, nil
}

func (d *mockHALDevice) DestroyBindGroupLayout(_ hal.BindGroupLayout) {
	atomic.AddInt32(&d.layoutsFreed, 1)
}

func (d *mockHALDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.bindGroupDescs = append(d.bindGroupDescs, desc)
	return &mockHALHandle{}, nil
}

func (d *mockHALDevice) DestroyBindGroup(_ hal.BindGroup) {
	atomic.AddInt32(&d.bindGroupsFreed, 1)
}

func (d *mockHALDevice) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	d.pipeLayoutDescs = append(d.pipeLayoutDescs, desc)
	return &mockHALHandle{}, nil
}

func (d *mockHALDevice) DestroyPipelineLayout(_ hal.PipelineLayout) {
	atomic.AddInt32(&d.pipeLayoutsFreed, 1)
}

func (d *mockHALDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.shaderDescs = append(d.shaderDescs, desc)
	return &mockHALHandle{}, nil
}

func (d *mockHALDevice) DestroyShaderModule(_ hal.ShaderModule) {
	atomic.AddInt32(&d.shadersFreed, 1)
}

func (d *mockHALDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelineDescs = append(d.pipelineDescs, desc)
	return &mockHALHandle{}, nil
}

func (d *mockHALDevice) DestroyRenderPipeline(_ hal.RenderPipeline) {
	atomic.AddInt32(&d.pipelinesFreed, 1)
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateComputePipeline(_ *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyComputePipeline(_ hal.ComputePipeline) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return nil, nil
}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateFence() (hal.Fence, error) { return nil, nil }
func (d *mockHALDevice) DestroyFence(_ hal.Fence)        {}
func (d *mockHALDevice) Wait(_ hal.Fence, _ uint64, _ time.Duration) (bool, error) {
	return true, nil
}
func (d *mockHALDevice) Destroy()                              {}
func (d *mockHALDevice) FreeCommandBuffer(_ hal.CommandBuffer) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateQuerySet(_ *hal.QuerySetDescriptor) (hal.QuerySet, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyQuerySet(_ hal.QuerySet) {}

//nolint:nilnil // Mock: unused interface methods.
func (d *mockHALDevice) CreateRenderBundleEncoder(_ *hal.RenderBundleEncoderDescriptor) (hal.RenderBundleEncoder, error) {
	return nil, nil
}
func (d *mockHALDevice) DestroyRenderBundle(_ hal.RenderBundle)   {}
func (d *mockHALDevice) ResetFence(_ hal.Fence) error             { return nil }
func (d *mockHALDevice) GetFenceStatus(_ hal.Fence) (bool, error) { return true, nil }
func (d *mockHALDevice) WaitIdle() error                          { return nil }

// findLayout returns the recorded bind group layout descriptor with the
// given label, or nil.
func (d *mockHALDevice) findLayout(label string) *hal.BindGroupLayoutDescriptor {
	for _, l := range d.layoutDescs {
		if l.Label == label {
			return l
		}
	}
	return nil
}

// mockQueue is a test double for hal.Queue that records buffer and
// texture writes.
type mockQueue struct {
	bufferWrites  []mockBufferWrite
	textureWrites []mockTextureWrite
	submits       int
}

type mockBufferWrite struct {
	buffer hal.Buffer
	offset uint64
	data   []byte
}

type mockTextureWrite struct {
	dst    *hal.ImageCopyTexture
	data   []byte
	layout *hal.ImageDataLayout
	size   *hal.Extent3D
}

func (q *mockQueue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	q.bufferWrites = append(q.bufferWrites, mockBufferWrite{buffer: buffer, offset: offset, data: cp})
	return nil
}

func (q *mockQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	q.textureWrites = append(q.textureWrites, mockTextureWrite{dst: dst, data: cp, layout: layout, size: size})
	return nil
}

func (q *mockQueue) Submit(_ []hal.CommandBuffer, _ hal.Fence, _ uint64) error {
	q.submits++
	return nil
}

func (q *mockQueue) ReadBuffer(_ hal.Buffer, _ uint64, _ []byte) error { return nil }

func (q *mockQueue) Present(_ hal.Surface, _ hal.SurfaceTexture) error { return nil }
func (q *mockQueue) GetTimestampPeriod() float32                       { return 1 }

// mockHALTexture is a test double for hal.Texture.
type mockHALTexture struct {
	width  uint32
	height uint32
	format gputypes.TextureFormat
}

func (t *mockHALTexture) Destroy()              {}
func (t *mockHALTexture) NativeHandle() uintptr { return 0 }

// mockHALTextureView is a test double for hal.TextureView.
type mockHALTextureView struct {
	texture hal.Texture
	label   string
}

func (v *mockHALTextureView) Destroy()              {}
func (v *mockHALTextureView) NativeHandle() uintptr { return 0 }

// mockHALBuffer is a test double for hal.Buffer.
type mockHALBuffer struct {
	size uint64
}

func (b *mockHALBuffer) Destroy()              {}
func (b *mockHALBuffer) NativeHandle() uintptr { return 0 }

// mockHALSampler is a test double for hal.Sampler.
type mockHALSampler struct{}

func (s *mockHALSampler) Destroy()              {}
func (s *mockHALSampler) NativeHandle() uintptr { return 0 }

// mockHALHandle is a minimal test double for handle-like resources:
// shader modules, layouts, bind groups, and pipelines.
type mockHALHandle struct{}

func (h *mockHALHandle) Destroy()              {}
func (h *mockHALHandle) NativeHandle() uintptr { return 0 }
