package gbuffer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/deferred"
)

func testVerts() []deferred.Vertex {
	return []deferred.Vertex{
		{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}, Texcoord: [2]float32{0, 0}},
		{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}, Texcoord: [2]float32{1, 0}},
		{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}, Texcoord: [2]float32{0, 1}},
	}
}

func TestNewMeshEmpty(t *testing.T) {
	device := &mockHALDevice{}
	queue := &mockQueue{}

	if _, err := NewMesh(device, queue, nil, []uint32{0, 1, 2}); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("no vertices: got %v, want ErrEmptyMesh", err)
	}
	if _, err := NewMesh(device, queue, testVerts(), nil); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("no indices: got %v, want ErrEmptyMesh", err)
	}
	if len(queue.bufferWrites) != 0 {
		t.Error("invalid mesh must not touch the queue")
	}
}

func TestNewMeshIndexOutOfRange(t *testing.T) {
	device := &mockHALDevice{}
	queue := &mockQueue{}

	_, err := NewMesh(device, queue, testVerts(), []uint32{0, 1, 3})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("got %v, want ErrIndexOutOfRange", err)
	}
	if len(device.bufferDescs) != 0 {
		t.Error("invalid mesh must not allocate buffers")
	}
}

func TestNewMeshUpload(t *testing.T) {
	device := &mockHALDevice{}
	queue := &mockQueue{}

	mesh, err := NewMesh(device, queue, testVerts(), []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	if mesh.IndexCount() != 3 {
		t.Errorf("IndexCount = %d, want 3", mesh.IndexCount())
	}
	if len(queue.bufferWrites) != 2 {
		t.Fatalf("buffer writes = %d, want 2 (vertices, indices)", len(queue.bufferWrites))
	}

	vertWrite := queue.bufferWrites[0]
	if len(vertWrite.data) != 3*deferred.VertexStride {
		t.Errorf("vertex data = %d bytes, want %d", len(vertWrite.data), 3*deferred.VertexStride)
	}
	// Second vertex starts at one stride; its position.x is 1.0.
	x := math.Float32frombits(binary.LittleEndian.Uint32(vertWrite.data[deferred.VertexStride:]))
	if x != 1.0 {
		t.Errorf("second vertex position.x = %v, want 1.0", x)
	}

	idxWrite := queue.bufferWrites[1]
	if len(idxWrite.data) != 3*4 {
		t.Errorf("index data = %d bytes, want 12", len(idxWrite.data))
	}
	if got := binary.LittleEndian.Uint32(idxWrite.data[8:]); got != 2 {
		t.Errorf("third index = %d, want 2", got)
	}
}

func TestMeshDestroyIdempotent(t *testing.T) {
	device := &mockHALDevice{}
	queue := &mockQueue{}

	mesh, err := NewMesh(device, queue, testVerts(), []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	mesh.Destroy()
	mesh.Destroy()

	if device.buffersDestroyed != 2 {
		t.Errorf("buffersDestroyed = %d, want 2", device.buffersDestroyed)
	}
}
