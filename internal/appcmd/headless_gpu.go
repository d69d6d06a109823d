package appcmd

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/geo3d/tileviewer/internal/bounds"
	"github.com/geo3d/tileviewer/internal/gpu"
	"github.com/geo3d/tileviewer/internal/view"
)

// headlessMesh and headlessTexture are inert gpu.Mesh/gpu.Texture handles:
// there is no windowing layer in this CLI, so uploads have nowhere real to
// go. They exist so the traversal's upload and draw calls have something
// to hold onto and log against.
type headlessMesh struct {
	transform mgl32.Mat4
}

func (m *headlessMesh) SetTransformation(t mgl32.Mat4) { m.transform = t }

type headlessTexture struct {
	width, height int
}

// headlessContext is the gpu.Context a windowless run uses: it counts
// draws instead of issuing them, so the run command can report how many
// tiles and bounding boxes a frame produced.
type headlessContext struct {
	log *slog.Logger

	meshesUploaded   int
	texturesUploaded int
	meshesDrawn      int
	boxesDrawn       int
}

func newHeadlessContext(log *slog.Logger) *headlessContext {
	return &headlessContext{log: log}
}

func (c *headlessContext) NewMesh(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) gpu.Mesh {
	c.meshesUploaded++
	return &headlessMesh{}
}

func (c *headlessContext) NewTexture(width, height int, rgb []byte) gpu.Texture {
	c.texturesUploaded++
	return &headlessTexture{width: width, height: height}
}

func (c *headlessContext) DrawMesh(mesh gpu.Mesh, material *gpu.Material, camera view.Camera, lights []gpu.Light) {
	c.meshesDrawn++
}

func (c *headlessContext) DrawBox(box bounds.OrientedBox, color [4]float32, camera view.Camera, lights []gpu.Light) {
	c.boxesDrawn++
}
