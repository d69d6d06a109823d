package gltfdecode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Decode parses a GLB payload and extracts CPU content for every primitive
// of the last mesh of the last node, per spec.md §4.F. Unlike the original
// implementation (which panics on a malformed GLB), decode failures are
// returned as an error so the fetch task can fail the tile without
// crashing the render loop.
func Decode(glb []byte) ([]CPUContent, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(glb)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glb: %w", err)
	}

	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("glb has no nodes")
	}
	if len(doc.Meshes) == 0 {
		return nil, fmt.Errorf("glb has no meshes")
	}

	node := doc.Nodes[len(doc.Nodes)-1]
	nodeMat := nodeLocalTransform(node)
	finalMat := yUpToZUp.Mul4(nodeMat)

	mesh := doc.Meshes[len(doc.Meshes)-1]

	contents := make([]CPUContent, 0, len(mesh.Primitives))
	for i, prim := range mesh.Primitives {
		content, err := decodePrimitive(doc, prim, i, finalMat)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func decodePrimitive(doc *gltf.Document, prim *gltf.Primitive, index int, mat mgl64.Mat4) (CPUContent, error) {
	indices, err := readIndices(doc, prim)
	if err != nil {
		return CPUContent{}, err
	}

	posAccessorIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return CPUContent{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positionsRaw, err := modeler.ReadPosition(doc, doc.Accessors[posAccessorIdx], nil)
	if err != nil {
		return CPUContent{}, fmt.Errorf("read positions: %w", err)
	}
	positions := make([]mgl64.Vec3, len(positionsRaw))
	for i, p := range positionsRaw {
		positions[i] = mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	var uvs []mgl64.Vec2
	if uvAccessorIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvsRaw, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvAccessorIdx], nil)
		if err != nil {
			return CPUContent{}, fmt.Errorf("read texcoords: %w", err)
		}
		uvs = make([]mgl64.Vec2, len(uvsRaw))
		for i, uv := range uvsRaw {
			uvs[i] = mgl64.Vec2{float64(uv[0]), float64(uv[1])}
		}
	}

	texture, err := decodeImageAt(doc, index)
	if err != nil {
		return CPUContent{}, err
	}

	return CPUContent{
		Mesh: CPUMesh{
			Indices:   indices,
			Positions: positions,
			UVs:       uvs,
		},
		Texture: texture,
		Mat:     mat,
	}, nil
}

func readIndices(doc *gltf.Document, prim *gltf.Primitive) ([]uint32, error) {
	if prim.Indices == nil {
		return nil, fmt.Errorf("primitive has no indices")
	}
	return modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
}

// decodeImageAt decodes the image at the same index as the primitive being
// processed (not the material's texture reference), matching the toy
// assumption the tile generator makes: primitive i's texture is image i.
func decodeImageAt(doc *gltf.Document, index int) (CPUTexture, error) {
	if index >= len(doc.Images) {
		return CPUTexture{}, fmt.Errorf("no image at index %d", index)
	}
	img := doc.Images[index]

	raw, err := imageBytes(doc, img)
	if err != nil {
		return CPUTexture{}, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return CPUTexture{}, fmt.Errorf("decode image %d: %w", index, err)
	}

	return toRGB8(decoded), nil
}

func imageBytes(doc *gltf.Document, img *gltf.Image) ([]byte, error) {
	if img.BufferView == nil {
		return nil, fmt.Errorf("image has no embedded bufferView (external URIs are not supported)")
	}
	bv := doc.BufferViews[*img.BufferView]
	buf := doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if end > uint32(len(buf.Data)) {
		return nil, fmt.Errorf("bufferView out of range")
	}
	return buf.Data[bv.ByteOffset:end], nil
}

func toRGB8(img image.Image) CPUTexture {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgb := make([]byte, w*h*3)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgb[i] = c.R
			rgb[i+1] = c.G
			rgb[i+2] = c.B
			i += 3
		}
	}

	return CPUTexture{Width: w, Height: h, RGB: rgb}
}
