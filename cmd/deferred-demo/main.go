// Command deferred-demo renders one frame of the deferred pipeline on
// the first available GPU and saves it as a PNG: a spinning textured
// cube through the geometry pass, composited from the G-buffer.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/gbuffer"
)

func main() {
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		output  = flag.String("output", "frame.png", "output file")
		config  = flag.String("config", "", "pipeline config TOML (optional)")
		verbose = flag.Bool("v", false, "log GPU activity")
	)
	flag.Parse()

	if *verbose {
		gbuffer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	cfg := deferred.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = deferred.LoadConfig(*config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	gpu, err := gbuffer.OpenGPU()
	if err != nil {
		log.Fatalf("Failed to open GPU: %v", err)
	}
	defer gpu.Close()
	log.Printf("Rendering on %s", gpu.AdapterName())

	renderer, err := gbuffer.NewRenderer(gpu.Device(), gpu.Queue(), cfg)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Destroy()

	if err := renderer.Resize(uint32(*width), uint32(*height)); err != nil {
		log.Fatalf("Failed to size renderer: %v", err)
	}

	verts, indices := cubeMesh()
	mesh, err := gbuffer.NewMesh(gpu.Device(), gpu.Queue(), verts, indices)
	if err != nil {
		log.Fatalf("Failed to create mesh: %v", err)
	}
	defer mesh.Destroy()

	var material *gbuffer.Material
	if layout := renderer.MaterialLayout(); layout != nil {
		material, err = gbuffer.NewMaterial(gpu.Device(), gpu.Queue(), layout, checkerboard(256, 32))
		if err != nil {
			log.Fatalf("Failed to create material: %v", err)
		}
		defer material.Destroy()
	}

	// The camera position is remapped like vertex positions; this spot
	// lands ten units in front of the cube after the remap.
	camera := deferred.NewCamera(60, float32(*width)/float32(*height))
	camera.Position = mgl32.Vec3{-10, 0, 0}

	transform := deferred.NewTransform()
	transform.Rotate(mgl32.Vec3{0, 1, 0}, mgl32.DegToRad(30))
	transform.Rotate(mgl32.Vec3{1, 0, 0}, mgl32.DegToRad(20))

	frame, err := renderer.RenderFrame(camera.ViewProjection(), []gbuffer.Draw{
		{Mesh: mesh, Material: material, Model: transform.Matrix()},
	})
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if err := savePNG(*output, frame); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Frame saved to %s (%dx%d)", *output, *width, *height)
}

// cubeMesh returns a unit-radius cube with per-face normals and full
// [0,1] texcoords on every face.
func cubeMesh() ([]deferred.Vertex, []uint32) {
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var verts []deferred.Vertex
	var indices []uint32
	for _, f := range faces {
		base := uint32(len(verts))
		for i, c := range f.corners {
			verts = append(verts, deferred.Vertex{Position: c, Normal: f.normal, Texcoord: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, indices
}

// checkerboard returns a size x size test texture with cells of the
// given width.
func checkerboard(size, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 230, G: 230, B: 230, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{R: 180, G: 60, B: 60, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
