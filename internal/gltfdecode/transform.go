package gltfdecode

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

// yUpToZUp swaps glTF's Y-up convention for the dataset's Z-up ECEF
// convention: new = (x, -z, y). Its columns are X, Z, -Y, matching the
// basis swap the tile service's node transforms are authored against.
var yUpToZUp = mgl64.Mat4FromCols(
	mgl64.Vec4{1, 0, 0, 0},
	mgl64.Vec4{0, 0, 1, 0},
	mgl64.Vec4{0, -1, 0, 0},
	mgl64.Vec4{0, 0, 0, 1},
)

// identityMatrix16 is a glTF node's default "matrix" value.
var identityMatrix16 = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// nodeLocalTransform decomposes a node's transform into translation,
// rotation and scale and recomposes it as T*R*S, following spec.md §4.F.
// If the node carries an explicit matrix (distinct from the glTF default
// identity), that matrix is used directly instead of decomposing TRS.
func nodeLocalTransform(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != identityMatrix16 {
		return mat4FromGLTFColumns(n.Matrix)
	}

	t := n.Translation
	r := n.Rotation
	s := n.Scale

	if r == [4]float32{} {
		r = [4]float32{0, 0, 0, 1}
	}
	if s == [3]float32{} {
		s = [3]float32{1, 1, 1}
	}

	translation := mgl64.Translate3D(float64(t[0]), float64(t[1]), float64(t[2]))
	rotation := mgl64.Quat{
		W: float64(r[3]),
		V: mgl64.Vec3{float64(r[0]), float64(r[1]), float64(r[2])},
	}.Mat4()
	scale := mgl64.Scale3D(float64(s[0]), float64(s[1]), float64(s[2]))

	return translation.Mul4(rotation).Mul4(scale)
}

// mat4FromGLTFColumns converts a glTF column-major [16]float32 matrix into
// an mgl64.Mat4 (also column-major).
func mat4FromGLTFColumns(m [16]float32) mgl64.Mat4 {
	var out mgl64.Mat4
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}
