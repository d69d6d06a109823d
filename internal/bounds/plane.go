// Package bounds implements the oriented bounding box and frustum geometry
// that drives tile visibility and screen-space-error culling: plane
// extraction from a view-projection matrix, the planet-aware far plane
// substitution, the 15-axis OBB/OBB separating-axis test, and the
// back-of-globe visibility predicate.
package bounds

import "github.com/go-gl/mathgl/mgl64"

// Plane is a half-space boundary with an inward-pointing unit normal: a
// point x is inside the plane when Normal.Dot(x) + D >= 0.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// Normalized returns p scaled so Normal has unit length.
func (p Plane) Normalized() Plane {
	length := p.Normal.Len()
	if length == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / length), D: p.D / length}
}

// SignedDistance returns Normal.Dot(point) + D: positive when point is on
// the inside of the plane.
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// CullingResult classifies an object's position relative to a plane.
type CullingResult int

const (
	Outside CullingResult = iota
	Inside
	Intersecting
)

// ExtractPlanes extracts the six canonical view-frustum planes (Left,
// Right, Bottom, Top, Near, Far) from a column-major view-projection
// matrix, treating it row-wise as spec'd:
//
//	L = r3 + r0, R = r3 - r0, B = r3 + r1, T = r3 - r1, N = r3 + r2, F = r3 - r2
func ExtractPlanes(vp mgl64.Mat4) [6]Plane {
	r0 := row(vp, 0)
	r1 := row(vp, 1)
	r2 := row(vp, 2)
	r3 := row(vp, 3)

	planes := [6]Plane{
		planeFromVec4(r3.Add(r0)), // Left
		planeFromVec4(r3.Sub(r0)), // Right
		planeFromVec4(r3.Add(r1)), // Bottom
		planeFromVec4(r3.Sub(r1)), // Top
		planeFromVec4(r3.Add(r2)), // Near
		planeFromVec4(r3.Sub(r2)), // Far
	}
	for i := range planes {
		planes[i] = planes[i].Normalized()
	}
	return planes
}

// row returns the i-th row of a column-major 4x4 matrix as a Vec4.
func row(m mgl64.Mat4, i int) mgl64.Vec4 {
	return mgl64.Vec4{m.Col(0)[i], m.Col(1)[i], m.Col(2)[i], m.Col(3)[i]}
}

func planeFromVec4(v mgl64.Vec4) Plane {
	return Plane{Normal: mgl64.Vec3{v[0], v[1], v[2]}, D: v[3]}
}
