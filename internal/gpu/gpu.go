// Package gpu is the pure CPU->GPU upload glue: it turns decoded
// CPUContent into GPU-resident meshes and textures through an abstract
// Context, and owns the single shared material every tile draws with.
package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/geo3d/tileviewer/internal/bounds"
	"github.com/geo3d/tileviewer/internal/gltfdecode"
	"github.com/geo3d/tileviewer/internal/view"
)

// Mesh is an opaque handle to a GPU-resident mesh, as returned by a
// Context implementation. Its concrete type lives entirely on the
// rendering-backend side of this package's boundary.
type Mesh interface {
	// SetTransformation sets the mesh's model matrix.
	SetTransformation(mgl32.Mat4)
}

// Texture is an opaque handle to a GPU-resident texture.
type Texture interface{}

// Light is a placeholder for the lighting collaborator passed through to
// draw calls; its shape is owned by the rendering backend, not this
// package.
type Light interface{}

// Context is the abstract GPU backend this package uploads content
// through. A real implementation wraps whatever graphics API backs the
// windowing layer (out of scope here, per spec's GUI/GL Non-goals); tests
// use a fake.
type Context interface {
	NewMesh(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) Mesh
	NewTexture(width, height int, rgb []byte) Texture

	// DrawMesh issues the actual draw call for a previously uploaded mesh
	// with the given material, camera and lights.
	DrawMesh(mesh Mesh, material *Material, camera view.Camera, lights []Light)

	// DrawBox renders an oriented box's wireframe edges in color, used for
	// the showBBoxes debug overlay. A real backend builds its line geometry
	// from box.HalfAxes/box.Center on demand rather than keeping one
	// allocated per tile.
	DrawBox(box bounds.OrientedBox, color [4]float32, camera view.Camera, lights []Light)
}

// Material is the single shared WHITE, back-face-culled color material
// every tile draws with. Each draw receives a copy of it with the tile's
// texture swapped in; the shared value itself is not mutated.
type Material struct {
	Albedo          [4]float32 // WHITE
	BackFaceCulling bool
	Texture         Texture
}

// NewMaterial returns the shared material in its initial state: opaque
// white, back-face culled, no texture bound yet.
func NewMaterial() *Material {
	return &Material{
		Albedo:          [4]float32{1, 1, 1, 1},
		BackFaceCulling: true,
	}
}

// GPUContent is the GPU-resident counterpart of gltfdecode.CPUContent.
type GPUContent struct {
	Mesh    Mesh
	Texture Texture
}

// Upload converts CPU content into GPU content: it creates a mesh, sets
// its transformation, and uploads the texture with clamp-to-edge wrapping
// (clamping is the Context implementation's responsibility — this package
// only supplies width/height/pixels).
func Upload(ctx Context, content gltfdecode.CPUContent) GPUContent {
	positions := make([]mgl32.Vec3, len(content.Mesh.Positions))
	for i, p := range content.Mesh.Positions {
		positions[i] = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	}

	uvs := make([]mgl32.Vec2, len(content.Mesh.UVs))
	for i, uv := range content.Mesh.UVs {
		uvs[i] = mgl32.Vec2{float32(uv[0]), float32(uv[1])}
	}

	mesh := ctx.NewMesh(content.Mesh.Indices, positions, uvs)
	mesh.SetTransformation(mat4To32(content.Mat))

	texture := ctx.NewTexture(content.Texture.Width, content.Texture.Height, content.Texture.RGB)

	return GPUContent{Mesh: mesh, Texture: texture}
}

// UploadAll uploads every CPU content in order, returning the GPU content
// list the tile cache stores as Ready([]GpuContent).
func UploadAll(ctx Context, contents []gltfdecode.CPUContent) []GPUContent {
	out := make([]GPUContent, len(contents))
	for i, c := range contents {
		out[i] = Upload(ctx, c)
	}
	return out
}

func mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
