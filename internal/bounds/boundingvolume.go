package bounds

import "github.com/go-gl/mathgl/mgl64"

// degenerateEps is the threshold below which a half-axis vector is treated
// as collapsed (zero length) when deriving an orthonormal basis.
const degenerateEps = 1e-9

// BoundingVolume is the raw oriented box as it arrives on the wire: a
// center and three (possibly non-orthogonal, possibly degenerate) half-axis
// vectors, decoded from a 3D Tiles "box" array of 12 floats
// (center, half-x, half-y, half-z).
type BoundingVolume struct {
	Center mgl64.Vec3
	X, Y, Z mgl64.Vec3
}

// BoundingVolumeFromBox12 builds a BoundingVolume from the 12-element
// column-major box array used by the 3D Tiles "box" bounding volume.
func BoundingVolumeFromBox12(box [12]float64) BoundingVolume {
	return BoundingVolume{
		Center: mgl64.Vec3{box[0], box[1], box[2]},
		X:      mgl64.Vec3{box[3], box[4], box[5]},
		Y:      mgl64.Vec3{box[6], box[7], box[8]},
		Z:      mgl64.Vec3{box[9], box[10], box[11]},
	}
}

// Corners returns the 8 corners of the box: center +/- X +/- Y +/- Z.
func (b BoundingVolume) Corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range [2]float64{1, -1} {
		for _, sy := range [2]float64{1, -1} {
			for _, sz := range [2]float64{1, -1} {
				out[i] = b.Center.Add(b.X.Mul(sx)).Add(b.Y.Mul(sy)).Add(b.Z.Mul(sz))
				i++
			}
		}
	}
	return out
}

// axesAndExtents derives an orthonormal basis (a0, a1, a2) and positive
// extents from three possibly non-orthogonal, possibly degenerate half-axis
// vectors, following spec.md 4.B:
//   - a0 is x normalized, falling back to world X when x is degenerate.
//   - a1 is y Gram-Schmidt-orthogonalized against a0, falling back to the
//     world axis least parallel to a0 when the result is degenerate.
//   - a2 = a0 x a1, falling back to a non-parallel world axis if degenerate.
//
// extents holds the original axis lengths (|x|, |y|, |z|).
func axesAndExtents(x, y, z mgl64.Vec3) (a0, a1, a2 mgl64.Vec3, extents mgl64.Vec3) {
	extents = mgl64.Vec3{x.Len(), y.Len(), z.Len()}

	if extents[0] > degenerateEps {
		a0 = x.Mul(1 / extents[0])
	} else {
		a0 = mgl64.Vec3{1, 0, 0}
	}

	a1 = orthogonalize(y, a0)
	if a1.Len() <= degenerateEps {
		a1 = orthogonalize(leastParallelAxis(a0), a0)
	}
	a1 = a1.Normalize()

	a2 = a0.Cross(a1)
	if a2.Len() <= degenerateEps {
		a2 = orthogonalize(leastParallelAxis(a0), a0).Cross(a1)
	}
	a2 = a2.Normalize()

	return a0, a1, a2, extents
}

// orthogonalize removes the component of v that is parallel to the unit
// vector along, i.e. one step of Gram-Schmidt.
func orthogonalize(v, along mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(along.Mul(along.Dot(v)))
}

// leastParallelAxis returns whichever world axis (X, Y or Z) is least
// parallel to a, used as a Gram-Schmidt seed when the natural choice
// collapses to zero.
func leastParallelAxis(a mgl64.Vec3) mgl64.Vec3 {
	worldAxes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	best := worldAxes[0]
	bestDot := 2.0 // larger than any possible |dot| with a unit vector
	for _, w := range worldAxes {
		d := a.Dot(w)
		if d < 0 {
			d = -d
		}
		if d < bestDot {
			bestDot = d
			best = w
		}
	}
	return best
}

// IntersectsFrustum tests the box's raw half-axes (not orthonormalized,
// matching the stored geometry) against every plane of f, computing the
// oriented radius r = |n.x| + |n.y| + |n.z| and signed distance
// s = n.center + d. The box is rejected iff s + r < 0 for any plane.
func (b BoundingVolume) IntersectsFrustum(f Frustum) bool {
	for _, p := range f.Planes {
		r := absDot(p.Normal, b.X) + absDot(p.Normal, b.Y) + absDot(p.Normal, b.Z)
		s := p.Normal.Dot(b.Center) + p.D
		if s+r < 0 {
			return false
		}
	}
	return true
}

func absDot(n, v mgl64.Vec3) float64 {
	d := n.Dot(v)
	if d < 0 {
		return -d
	}
	return d
}

// IsVisible implements the back-of-globe visibility test: true iff at
// least one of the box's 8 corners, normalized from the planet center, has
// a positive dot product with the normalized camera position, i.e. at
// least one corner shares the camera's hemisphere of the globe.
func (b BoundingVolume) IsVisible(cameraPos mgl64.Vec3) bool {
	camDir := cameraPos.Normalize()
	for _, c := range b.Corners() {
		if c.Len() <= degenerateEps {
			continue
		}
		if c.Normalize().Dot(camDir) > 0 {
			return true
		}
	}
	return false
}

// Intersects runs the 15-axis OBB/OBB separating-axis test (Ericson) against
// other: 3 axes of this box, 3 of the other, and 9 cross-product pair axes.
// A small epsilon is added to every projected-radius sum to tolerate
// numerical coplanarity.
func (b BoundingVolume) Intersects(other BoundingVolume) bool {
	const satEps = 1e-6

	aX, aY, aZ, aExt := axesAndExtents(b.X, b.Y, b.Z)
	bX, bY, bZ, bExt := axesAndExtents(other.X, other.Y, other.Z)

	aAxes := [3]mgl64.Vec3{aX, aY, aZ}
	bAxes := [3]mgl64.Vec3{bX, bY, bZ}

	t := other.Center.Sub(b.Center)

	axes := make([]mgl64.Vec3, 0, 15)
	axes = append(axes, aAxes[:]...)
	axes = append(axes, bAxes[:]...)
	for _, ai := range aAxes {
		for _, bj := range bAxes {
			cr := ai.Cross(bj)
			if cr.Len() > satEps {
				axes = append(axes, cr.Normalize())
			}
		}
	}

	for _, axis := range axes {
		ra := absDot(axis, aAxes[0])*aExt[0] + absDot(axis, aAxes[1])*aExt[1] + absDot(axis, aAxes[2])*aExt[2]
		rb := absDot(axis, bAxes[0])*bExt[0] + absDot(axis, bAxes[1])*bExt[1] + absDot(axis, bAxes[2])*bExt[2]
		dist := absDot(axis, t)
		if dist > ra+rb+satEps {
			return false
		}
	}
	return true
}
