package scene

import (
	"math"

	"github.com/geo3d/tileviewer/internal/fetchtask"
	"github.com/geo3d/tileviewer/internal/gpu"
	"github.com/geo3d/tileviewer/internal/view"
)

// maxTraversalDepth bounds recursion so a malformed or cyclic hierarchy
// can't spin traversal forever; in practice no real tileset nests this
// deep and the bound is never hit.
const maxTraversalDepth = 20

// Render walks the tile hierarchy from each root, culling against the
// camera's frustum and refining by screen-space error, and issues draw
// calls for every tile it decides to display at its current resolution.
// It returns the number of tiles selected for display this frame, which
// includes tiles whose content is still loading and so issued no draw call.
func (c *Cache) Render(camera view.Camera, lights []gpu.Light, showBBoxes bool) (leaves uint32) {
	if c.client == nil {
		return 0
	}

	s := view.NewState(camera)
	if c.cfg.DisablePlanetAwareFarPlane {
		s = view.NewStateConventionalFarPlane(camera)
	}

	for _, root := range c.roots {
		c.renderTile(root, s, camera, lights, &leaves, c.cfg.maxTraversalDepth(), showBBoxes)
	}
	return leaves
}

// renderTile implements the per-tile refinement decision: cull against
// the frustum and the back-of-globe test; if the tile doesn't meet its
// screen-space-error budget and has resolved children, recurse into them
// instead of drawing this tile; otherwise draw this tile at its current
// resolution, kicking off a content fetch if none is in flight yet and
// lazily expanding any unresolved child links the first time refinement
// is denied.
func (c *Cache) renderTile(key string, s view.State, camera view.Camera, lights []gpu.Light, leaves *uint32, maxLevel int, showBBoxes bool) {
	t, ok := c.cache[key]
	if !ok {
		return
	}

	isVisible := t.Bounding.IsVisible(s.Position) && t.Bounding.IntersectsFrustum(s.Frustum)
	if !isVisible {
		return
	}

	distance := math.Sqrt(t.OrientedBox.DistanceSquaredTo(s.Position))
	meetsSSE := view.MeetsSSEWithBudget(s, t.GeometricError, distance, c.cfg.pixelErrorBudget())

	if len(t.Children) > 0 && !meetsSSE && maxLevel > 0 {
		for _, child := range t.Children {
			c.renderTile(child, s, camera, lights, leaves, maxLevel-1, showBBoxes)
		}
		return
	}

	if t.ContentState == ContentNone {
		t.ContentFuture = fetchtask.FetchContent(c.runner, c.client, key)
		t.ContentState = ContentLoading
	}

	if !meetsSSE && len(t.ChildOptions) > 0 && maxLevel > 0 {
		for _, option := range t.ChildOptions {
			c.nodePromises = append(c.nodePromises, fetchtask.FetchNode(c.runner, c.client, option, key))
		}
		t.ChildOptions = nil
	}

	if t.ContentState == ContentReady {
		for _, content := range t.Contents {
			c.gpuCtx.DrawMesh(content.Mesh, materialWithTexture(c.material, content.Texture), camera, lights)
		}
	}
	*leaves++

	if showBBoxes {
		// is_visible is always true here: a non-visible tile already
		// returned above, so the "draw red when culled" branch of the
		// original traversal is unreachable and isn't reproduced.
		c.gpuCtx.DrawBox(t.OrientedBox, [4]float32{1, 1, 1, 1}, camera, lights)
	}
}

// materialWithTexture returns a copy of shared with its texture swapped
// to tex, matching the clone-then-swap-texture pattern every draw uses
// instead of allocating a new material per tile.
func materialWithTexture(shared *gpu.Material, tex gpu.Texture) *gpu.Material {
	m := *shared
	m.Texture = tex
	return &m
}
