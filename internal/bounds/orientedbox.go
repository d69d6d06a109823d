package bounds

import "github.com/go-gl/mathgl/mgl64"

// OrientedBox is the precomputed form of a BoundingVolume used for distance
// queries: half-axes stored as the columns of a 3x3 matrix, its inverse,
// and the corresponding axis lengths (2x half-axis length each).
type OrientedBox struct {
	Center          mgl64.Vec3
	HalfAxes        mgl64.Mat3
	InverseHalfAxes mgl64.Mat3
	Lengths         mgl64.Vec3
}

// NewOrientedBox builds an OrientedBox from a center and a half-axes matrix
// whose columns are the (possibly non-orthogonal, possibly degenerate)
// half-axis vectors.
func NewOrientedBox(center mgl64.Vec3, halfAxes mgl64.Mat3) OrientedBox {
	return OrientedBox{
		Center:          center,
		HalfAxes:        halfAxes,
		InverseHalfAxes: halfAxes.Inv(),
		Lengths: mgl64.Vec3{
			halfAxes.Col(0).Len(),
			halfAxes.Col(1).Len(),
			halfAxes.Col(2).Len(),
		}.Mul(2),
	}
}

// NewOrientedBoxFromVolume builds an OrientedBox directly from a
// BoundingVolume's raw half-axis vectors.
func NewOrientedBoxFromVolume(b BoundingVolume) OrientedBox {
	return NewOrientedBox(b.Center, mgl64.Mat3FromCols(b.X, b.Y, b.Z))
}

// Transform applies a 4x4 transformation to the box, producing a new box
// whose half-axes are the transformation's rotation/scale part applied to
// the original half-axes. The transformation's 3x3 part is taken from its
// three distinct columns (0, 1, 2) — an earlier revision of this logic
// reused column 1 twice, collapsing the box onto a plane whenever the
// transform carried any scale or shear on the z axis.
func (o OrientedBox) Transform(transformation mgl64.Mat4) OrientedBox {
	centerW := transformation.Mul4x1(mgl64.Vec4{o.Center[0], o.Center[1], o.Center[2], 1})
	newCenter := mgl64.Vec3{centerW[0], centerW[1], centerW[2]}

	col := func(i int) mgl64.Vec3 {
		c := transformation.Col(i)
		return mgl64.Vec3{c[0], c[1], c[2]}
	}
	rotScale := mgl64.Mat3FromCols(col(0), col(1), col(2))

	return NewOrientedBox(newCenter, rotScale.Mul3(o.HalfAxes))
}

// IntersectPlane classifies the box against a plane: Outside if the whole
// box is on the plane's negative side, Inside if wholly on the positive
// side, Intersecting otherwise. All three half-axes are read as columns of
// the same matrix — an earlier revision read the third axis as a row of
// half_axes instead of its third column, which only agreed with the
// column form when the matrix happened to be symmetric.
func (o OrientedBox) IntersectPlane(p Plane) CullingResult {
	radius := absDot(p.Normal, o.HalfAxes.Col(0)) +
		absDot(p.Normal, o.HalfAxes.Col(1)) +
		absDot(p.Normal, o.HalfAxes.Col(2))

	distance := p.Normal.Dot(o.Center) + p.D

	switch {
	case distance <= -radius:
		return Outside
	case distance >= radius:
		return Inside
	default:
		return Intersecting
	}
}

// DistanceSquaredTo returns the squared distance from position to the
// closest point on the box. The offset is projected into the box's
// axis-local frame; per axis, any coordinate exceeding the half-extent
// contributes its squared overshoot. Degenerate (zero-length) axes are
// substituted with synthesized orthonormal axes, following the same
// one/two/three-degenerate-axis cases as the box's source geometry, so the
// query remains well-defined even when a face or the whole box has
// collapsed.
func (o OrientedBox) DistanceSquaredTo(position mgl64.Vec3) float64 {
	offset := position.Sub(o.Center)

	u := o.HalfAxes.Col(0)
	v := o.HalfAxes.Col(1)
	w := o.HalfAxes.Col(2)

	uHalf := u.Len()
	vHalf := v.Len()
	wHalf := w.Len()

	uValid := uHalf > 0
	vValid := vHalf > 0
	wValid := wHalf > 0

	degenerate := 0
	if uValid {
		u = u.Mul(1 / uHalf)
	} else {
		degenerate++
	}
	if vValid {
		v = v.Mul(1 / vHalf)
	} else {
		degenerate++
	}
	if wValid {
		w = w.Mul(1 / wHalf)
	} else {
		degenerate++
	}

	switch degenerate {
	case 1:
		var validAxis1, validAxis2 mgl64.Vec3
		switch {
		case !uValid:
			validAxis1, validAxis2 = v, w
		case !vValid:
			validAxis1, validAxis2 = w, u
		default: // !wValid
			validAxis1, validAxis2 = u, v
		}
		validAxis3 := validAxis1.Cross(validAxis2)
		switch {
		case !uValid:
			u = validAxis3
		case !vValid:
			v = validAxis3
		default:
			w = validAxis3
		}
	case 2:
		var validAxis1 mgl64.Vec3
		switch {
		case uValid:
			validAxis1 = u
		case vValid:
			validAxis1 = v
		default:
			validAxis1 = w
		}

		crossVector := mgl64.Vec3{0, 1, 0}
		if equalsEpsilon(validAxis1, crossVector, 1e-3, 1e-3) {
			crossVector = mgl64.Vec3{1, 0, 0}
		}
		validAxis2 := validAxis1.Cross(crossVector).Normalize()
		validAxis3 := validAxis1.Cross(validAxis2).Normalize()

		switch {
		case uValid:
			v, w = validAxis2, validAxis3
		case vValid:
			w, u = validAxis2, validAxis3
		default:
			u, v = validAxis2, validAxis3
		}
	case 3:
		u = mgl64.Vec3{1, 0, 0}
		v = mgl64.Vec3{0, 1, 0}
		w = mgl64.Vec3{0, 0, 1}
	}

	pPrime := mgl64.Vec3{offset.Dot(u), offset.Dot(v), offset.Dot(w)}

	var distSquared float64
	addOvershoot := func(coord, half float64) {
		var d float64
		switch {
		case coord < -half:
			d = coord + half
		case coord > half:
			d = coord - half
		default:
			return
		}
		distSquared += d * d
	}
	addOvershoot(pPrime[0], uHalf)
	addOvershoot(pPrime[1], vHalf)
	addOvershoot(pPrime[2], wHalf)

	return distSquared
}

// equalsEpsilon reports whether left and right agree within either an
// absolute or a relative tolerance on every component.
func equalsEpsilon(left, right mgl64.Vec3, relativeEpsilon, absoluteEpsilon float64) bool {
	diff := left.Sub(right)
	for i := 0; i < 3; i++ {
		d := diff[i]
		if d < 0 {
			d = -d
		}
		if d <= absoluteEpsilon {
			continue
		}
		la := left[i]
		if la < 0 {
			la = -la
		}
		if d <= relativeEpsilon*la {
			continue
		}
		return false
	}
	return true
}
