// Package view derives the per-frame ViewState from a camera and computes
// the screen-space-error refinement criterion used by tile traversal.
package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/geo3d/tileviewer/internal/bounds"
)

// PixelErrorBudget is the screen-space-error threshold below which a tile
// is considered detailed enough and traversal stops refining it.
const PixelErrorBudget = 16.0

// Camera is the input the renderer observes each frame: position, view and
// projection matrices, and viewport size in pixels. It carries no behavior
// of its own — orbiting, zooming, and other input handling are an external
// collaborator's concern.
type Camera struct {
	Position       mgl64.Vec3
	View           mgl64.Mat4
	Projection     mgl64.Mat4
	ViewportWidth  float64
	ViewportHeight float64
}

// State is the derived, per-frame view used by traversal and culling.
type State struct {
	Position         mgl64.Vec3
	Frustum          bounds.Frustum
	Planes           [6]bounds.Plane
	ViewportWidth    float64
	ViewportHeight   float64
	ProjectionMatrix mgl64.Mat4

	// CullingVolume holds only the 4 side planes (Left, Right, Bottom, Top)
	// derived from the clip matrix, for collaborators that cull against the
	// screen-space frustum without the planet-aware far-plane substitution.
	CullingVolume [4]bounds.Plane
}

// NewState derives a State from a camera, applying the planet-aware far
// plane (a plane through the world origin whose inward normal points
// toward the camera) in place of the conventional far plane.
func NewState(camera Camera) State {
	return newState(camera, true)
}

// NewStateConventionalFarPlane derives a State using the ordinary
// projective far plane instead of the planet-aware substitution, for
// configurations that disable it.
func NewStateConventionalFarPlane(camera Camera) State {
	return newState(camera, false)
}

func newState(camera Camera, planetAwareFarPlane bool) State {
	vp := camera.Projection.Mul4(camera.View)
	planes := bounds.ExtractPlanes(vp)

	frustum := bounds.FrustumFromViewProj(vp)
	if planetAwareFarPlane {
		frustum = bounds.FrustumWithOriginFar(vp, camera.Position)
	}

	return State{
		Position:         camera.Position,
		Frustum:          frustum,
		Planes:           planes,
		ViewportWidth:    camera.ViewportWidth,
		ViewportHeight:   camera.ViewportHeight,
		ProjectionMatrix: camera.Projection,
		CullingVolume:    [4]bounds.Plane{planes[0], planes[1], planes[2], planes[3]},
	}
}

// ComputeScreenSpaceError projects two points (0,0,-distance) and
// (0,geometricError,-distance) through the projection matrix, perspective
// divides, and returns the vertical distance between them in pixels of the
// given viewport height.
func ComputeScreenSpaceError(proj mgl64.Mat4, geometricError, distance, viewportHeight float64) float64 {
	distance = math.Max(distance, 1e-7)
	_, originY := projectAndDivide(proj, mgl64.Vec4{0, 0, -distance, 1})
	_, offsetY := projectAndDivide(proj, mgl64.Vec4{0, geometricError, -distance, 1})

	ndcError := offsetY - originY
	return math.Abs(-ndcError * (viewportHeight / 2))
}

func projectAndDivide(proj mgl64.Mat4, p mgl64.Vec4) (x, y float64) {
	clip := proj.Mul4x1(p)
	if clip[3] == 0 {
		return 0, 0
	}
	return clip[0] / clip[3], clip[1] / clip[3]
}

// MeetsSSE reports whether a tile with the given geometric error and
// distance from the camera satisfies the screen-space-error budget and
// should not be refined further. A geometric error of 0 always meets the
// budget: there is no finer representation to refine to.
func MeetsSSE(s State, geometricError, distance float64) bool {
	return MeetsSSEWithBudget(s, geometricError, distance, PixelErrorBudget)
}

// MeetsSSEWithBudget is MeetsSSE against an explicit pixel-error budget,
// for callers whose configuration overrides PixelErrorBudget.
func MeetsSSEWithBudget(s State, geometricError, distance, budget float64) bool {
	if geometricError == 0 {
		return true
	}
	sse := ComputeScreenSpaceError(s.ProjectionMatrix, geometricError, distance, s.ViewportHeight)
	return sse < budget
}
