// Package gltfdecode decodes a binary glTF (GLB) payload into CPU-side
// mesh and texture content ready for GPU upload: the last mesh of the last
// node, its primitives' geometry and images, transformed into the
// dataset's Z-up ECEF convention.
package gltfdecode

import "github.com/go-gl/mathgl/mgl64"

// CPUMesh is plain triangle geometry: u32 indices, f32 (stored as f64 for
// transform convenience) positions, and an optional UV0 set.
type CPUMesh struct {
	Indices   []uint32
	Positions []mgl64.Vec3
	UVs       []mgl64.Vec2
}

// CPUTexture is a decoded RGB8 image, sampled with clamp-to-edge wrapping.
type CPUTexture struct {
	Width, Height int
	RGB           []byte // len == Width*Height*3
}

// CPUContent is one primitive's mesh + texture + final model matrix,
// ready to be handed to internal/gpu for upload.
type CPUContent struct {
	Mesh    CPUMesh
	Texture CPUTexture
	Mat     mgl64.Mat4
}
