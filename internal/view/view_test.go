package view

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProjection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(45), 1.0, 0.1, 1e9)
}

func TestMeetsSSEZeroGeometricErrorAlwaysMeets(t *testing.T) {
	s := State{ProjectionMatrix: testProjection(), ViewportHeight: 1000}
	assert.True(t, MeetsSSE(s, 0, 10))
}

func TestMeetsSSEAtLargeDistance(t *testing.T) {
	s := State{ProjectionMatrix: testProjection(), ViewportHeight: 1000}
	assert.True(t, MeetsSSE(s, 1000, 1e9))
}

func TestScreenSpaceErrorMonotonicAsDistanceShrinks(t *testing.T) {
	proj := testProjection()
	const geometricError = 1000.0
	const viewportHeight = 1000.0

	distances := []float64{1e9, 1e7, 1e5, 1e3, 10}
	var last float64
	for i, d := range distances {
		sse := ComputeScreenSpaceError(proj, geometricError, d, viewportHeight)
		if i > 0 {
			require.GreaterOrEqual(t, sse, last, "sse should not decrease as distance shrinks (d=%v)", d)
		}
		last = sse
	}
}

func TestScreenSpaceErrorVanishesAtInfinity(t *testing.T) {
	sse := ComputeScreenSpaceError(testProjection(), 1000, 1e12, 1000)
	assert.InDelta(t, 0, sse, 1e-3)
}

func TestScreenSpaceErrorFiniteAtZeroDistance(t *testing.T) {
	sse := ComputeScreenSpaceError(testProjection(), 50, 0, 1000)
	assert.False(t, math.IsNaN(sse))
	assert.False(t, math.IsInf(sse, 0))
	assert.Greater(t, sse, 0.0)
}

func TestMeetsSSEWithBudgetHonorsExplicitBudget(t *testing.T) {
	s := State{ProjectionMatrix: testProjection(), ViewportHeight: 1000}
	sse := ComputeScreenSpaceError(s.ProjectionMatrix, 50, 100, s.ViewportHeight)
	require.Greater(t, sse, 0.0)

	assert.False(t, MeetsSSEWithBudget(s, 50, 100, sse/2))
	assert.True(t, MeetsSSEWithBudget(s, 50, 100, sse*2))
}

func TestNewStateConventionalFarPlaneDiffersFromPlanetAware(t *testing.T) {
	cam := Camera{
		Position:       mgl64.Vec3{0, 0, 100},
		View:           mgl64.LookAtV(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}),
		Projection:     testProjection(),
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
	planetAware := NewState(cam)
	conventional := NewStateConventionalFarPlane(cam)
	assert.NotEqual(t, planetAware.Frustum, conventional.Frustum)
}

func TestNewStateCarriesViewport(t *testing.T) {
	cam := Camera{
		Position:       mgl64.Vec3{0, 0, 100},
		View:           mgl64.LookAtV(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}),
		Projection:     testProjection(),
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
	s := NewState(cam)
	assert.Equal(t, 1920.0, s.ViewportWidth)
	assert.Equal(t, 1080.0, s.ViewportHeight)
	assert.Equal(t, cam.Position, s.Position)
	for _, p := range s.Planes {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-9)
	}
}
