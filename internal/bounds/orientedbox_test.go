package bounds

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axisAlignedBox() OrientedBox {
	return NewOrientedBox(mgl64.Vec3{0, 0, 0}, mgl64.Mat3FromCols(
		mgl64.Vec3{2, 0, 0},
		mgl64.Vec3{0, 3, 0},
		mgl64.Vec3{0, 0, 4},
	))
}

func TestNewOrientedBoxLengths(t *testing.T) {
	box := axisAlignedBox()
	assert.InDelta(t, 4.0, box.Lengths[0], 1e-9)
	assert.InDelta(t, 6.0, box.Lengths[1], 1e-9)
	assert.InDelta(t, 8.0, box.Lengths[2], 1e-9)
}

func TestDistanceSquaredToInside(t *testing.T) {
	box := axisAlignedBox()
	assert.Equal(t, 0.0, box.DistanceSquaredTo(mgl64.Vec3{1, 1, 1}))
}

func TestDistanceSquaredToOutsideSingleAxis(t *testing.T) {
	box := axisAlignedBox()
	// 5 units past the +X face (half-extent 2), aligned with the other axes.
	got := box.DistanceSquaredTo(mgl64.Vec3{7, 0, 0})
	assert.InDelta(t, 25.0, got, 1e-9)
}

func TestDistanceSquaredToOutsideAllAxes(t *testing.T) {
	box := axisAlignedBox()
	got := box.DistanceSquaredTo(mgl64.Vec3{4, 5, 7})
	// overshoot: x: 4-2=2, y: 5-3=2, z: 7-4=3 -> 4+4+9=17
	assert.InDelta(t, 17.0, got, 1e-9)
}

func TestDistanceSquaredToDegenerateOneAxis(t *testing.T) {
	// z-axis collapsed to zero: box is a flat rectangle in the XY plane.
	box := NewOrientedBox(mgl64.Vec3{0, 0, 0}, mgl64.Mat3FromCols(
		mgl64.Vec3{2, 0, 0},
		mgl64.Vec3{0, 3, 0},
		mgl64.Vec3{0, 0, 0},
	))
	got := box.DistanceSquaredTo(mgl64.Vec3{0, 0, 5})
	assert.InDelta(t, 25.0, got, 1e-9)
}

func TestDistanceSquaredToDegenerateAllAxes(t *testing.T) {
	box := NewOrientedBox(mgl64.Vec3{1, 1, 1}, mgl64.Mat3{})
	got := box.DistanceSquaredTo(mgl64.Vec3{4, 1, 1})
	assert.InDelta(t, 9.0, got, 1e-9)
}

func TestIntersectPlaneClassification(t *testing.T) {
	box := axisAlignedBox()

	inside := Plane{Normal: mgl64.Vec3{1, 0, 0}, D: 100}
	require.Equal(t, Inside, box.IntersectPlane(inside))

	outside := Plane{Normal: mgl64.Vec3{1, 0, 0}, D: -100}
	require.Equal(t, Outside, box.IntersectPlane(outside))

	intersecting := Plane{Normal: mgl64.Vec3{1, 0, 0}, D: 0}
	require.Equal(t, Intersecting, box.IntersectPlane(intersecting))
}

func TestTransformAppliesAllThreeColumns(t *testing.T) {
	box := axisAlignedBox()

	// Scale x2 on X, x3 on Y, x4 on Z: if the implementation reused column 1
	// for the z basis vector (the historical bug), the transformed box would
	// collapse its z half-axis onto the y axis instead of scaling it by 4.
	scale := mgl64.Mat4FromCols(
		mgl64.Vec4{2, 0, 0, 0},
		mgl64.Vec4{0, 3, 0, 0},
		mgl64.Vec4{0, 0, 4, 0},
		mgl64.Vec4{0, 0, 0, 1},
	)

	transformed := box.Transform(scale)

	assert.InDelta(t, 4.0, transformed.HalfAxes.Col(0).Len(), 1e-9)
	assert.InDelta(t, 9.0, transformed.HalfAxes.Col(1).Len(), 1e-9)
	assert.InDelta(t, 16.0, transformed.HalfAxes.Col(2).Len(), 1e-9)
}
