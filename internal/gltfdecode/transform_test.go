package gltfdecode

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
)

func TestNodeLocalTransformIdentityDefaults(t *testing.T) {
	n := &gltf.Node{
		Matrix:      identityMatrix16,
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
		Translation: [3]float32{0, 0, 0},
	}
	got := nodeLocalTransform(n)
	assert.Equal(t, mgl64.Ident4(), got)
}

func TestNodeLocalTransformTranslationOnly(t *testing.T) {
	n := &gltf.Node{
		Matrix:      identityMatrix16,
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
		Translation: [3]float32{10, 20, 30},
	}
	got := nodeLocalTransform(n)
	p := got.Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 10.0, p[0], 1e-9)
	assert.InDelta(t, 20.0, p[1], 1e-9)
	assert.InDelta(t, 30.0, p[2], 1e-9)
}

func TestNodeLocalTransformExplicitMatrixWins(t *testing.T) {
	m := identityMatrix16
	m[12] = 5 // translation.x column in a column-major 4x4
	n := &gltf.Node{
		Matrix:      m,
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
		Translation: [3]float32{999, 999, 999}, // should be ignored
	}
	got := nodeLocalTransform(n)
	p := got.Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 5.0, p[0], 1e-9)
}

func TestYUpToZUpSwapsAxes(t *testing.T) {
	v := yUpToZUp.Mul4x1(mgl64.Vec4{1, 2, 3, 1})
	// (x, y, z) -> (x, -z, y)
	assert.InDelta(t, 1.0, v[0], 1e-9)
	assert.InDelta(t, -3.0, v[1], 1e-9)
	assert.InDelta(t, 2.0, v[2], 1e-9)
}
