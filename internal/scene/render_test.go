package scene

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo3d/tileviewer/internal/bounds"
	"github.com/geo3d/tileviewer/internal/fetchtask"
	"github.com/geo3d/tileviewer/internal/gpu"
	"github.com/geo3d/tileviewer/internal/tileapi"
	"github.com/geo3d/tileviewer/internal/view"
)

// bootstrappedClientForTest spins up a minimal tile server with just
// enough hierarchy to satisfy session bootstrap, and returns a Client
// pointed at it. The server is closed automatically at test cleanup.
func bootstrappedClientForTest(t *testing.T) *tileapi.Client {
	t.Helper()
	box := [12]float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}

	type envelope struct {
		Root tileapi.Node `json:"root"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/3dtiles/root.json", func(w http.ResponseWriter, r *http.Request) {
		root := envelope{Root: tileapi.Node{
			Bounding: tileapi.Box12{Box: box},
			Children: []tileapi.Node{{
				Bounding: tileapi.Box12{Box: box},
				Children: []tileapi.Node{{
					Bounding: tileapi.Box12{Box: box},
					Content:  &tileapi.Content{URI: "/leaf.glb?session=abc123"},
				}},
			}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(root))
	})
	mux.HandleFunc("/leaf.glb", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("glb-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := tileapi.Bootstrap(context.Background(), "test-key", tileapi.Config{Endpoint: srv.URL})
	require.NoError(t, err)
	return c
}

type fakeGPUMesh struct{ transform mgl32.Mat4 }

func (m *fakeGPUMesh) SetTransformation(t mgl32.Mat4) { m.transform = t }

type fakeGPUTexture struct{}

type drawnMesh struct {
	mesh gpu.Mesh
	mat  *gpu.Material
}

type fakeGPUContext struct {
	drawn      []drawnMesh
	boxesDrawn int
}

func (c *fakeGPUContext) NewMesh(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) gpu.Mesh {
	return &fakeGPUMesh{}
}

func (c *fakeGPUContext) NewTexture(width, height int, rgb []byte) gpu.Texture {
	return &fakeGPUTexture{}
}

func (c *fakeGPUContext) DrawMesh(mesh gpu.Mesh, material *gpu.Material, camera view.Camera, lights []gpu.Light) {
	c.drawn = append(c.drawn, drawnMesh{mesh: mesh, mat: material})
}

func (c *fakeGPUContext) DrawBox(box bounds.OrientedBox, color [4]float32, camera view.Camera, lights []gpu.Light) {
	c.boxesDrawn++
}

func unitCubeAtOrigin() bounds.BoundingVolume {
	return bounds.BoundingVolumeFromBox12([12]float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

func cameraLookingAtOrigin() view.Camera {
	eye := mgl64.Vec3{0, 0, 10}
	return view.Camera{
		Position:       eye,
		View:           mgl64.LookAtV(eye, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}),
		Projection:     mgl64.Perspective(mgl64.DegToRad(60), 1, 0.1, 100),
		ViewportWidth:  800,
		ViewportHeight: 600,
	}
}

func newTestCache(gpuCtx *fakeGPUContext) *Cache {
	return &Cache{
		cache:    make(map[string]*Tile),
		material: gpu.NewMaterial(),
		gpuCtx:   gpuCtx,
	}
}

func TestRenderSkipsWhenClientNotReady(t *testing.T) {
	c := newTestCache(&fakeGPUContext{})
	leaves := c.Render(cameraLookingAtOrigin(), nil, false)
	assert.Zero(t, leaves)
}

func TestRenderDrawsVisibleLeafAndQueuesContentFetch(t *testing.T) {
	bv := unitCubeAtOrigin()
	c := newTestCache(&fakeGPUContext{})
	c.client = bootstrappedClientForTest(t)
	c.runner = fetchtask.NewRunner(fetchtask.Config{Workers: 1})
	c.runner.Start()
	defer c.runner.Stop()

	c.roots = []string{"leaf.glb"}
	c.cache["leaf.glb"] = &Tile{
		Bounding:       bv,
		OrientedBox:    bounds.NewOrientedBoxFromVolume(bv),
		GeometricError: 0, // always meets SSE
		ContentState:   ContentNone,
	}

	leaves := c.Render(cameraLookingAtOrigin(), nil, false)
	require.Equal(t, uint32(1), leaves)

	tile := c.cache["leaf.glb"]
	assert.Equal(t, ContentLoading, tile.ContentState)
	assert.NotNil(t, tile.ContentFuture)
}

func TestRenderDrawsMeshWhenContentReady(t *testing.T) {
	bv := unitCubeAtOrigin()
	fakeCtx := &fakeGPUContext{}
	c := newTestCache(fakeCtx)
	c.client = bootstrappedClientForTest(t)

	c.roots = []string{"leaf.glb"}
	c.cache["leaf.glb"] = &Tile{
		Bounding:       bv,
		OrientedBox:    bounds.NewOrientedBoxFromVolume(bv),
		GeometricError: 0,
		ContentState:   ContentReady,
		Contents: []gpu.GPUContent{
			{Mesh: &fakeGPUMesh{}, Texture: &fakeGPUTexture{}},
		},
	}

	leaves := c.Render(cameraLookingAtOrigin(), nil, true)
	require.Equal(t, uint32(1), leaves)
	require.Len(t, fakeCtx.drawn, 1)
	assert.Equal(t, 1, fakeCtx.boxesDrawn)
}

func TestRenderCullsTileBehindCamera(t *testing.T) {
	// A box far on the opposite side of the globe from the camera is
	// culled by the back-of-globe visibility test before any draw.
	bv := bounds.BoundingVolumeFromBox12([12]float64{
		0, 0, -1000,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	fakeCtx := &fakeGPUContext{}
	c := newTestCache(fakeCtx)
	c.client = bootstrappedClientForTest(t)
	c.roots = []string{"far.glb"}
	c.cache["far.glb"] = &Tile{
		Bounding:    bv,
		OrientedBox: bounds.NewOrientedBoxFromVolume(bv),
	}

	leaves := c.Render(cameraLookingAtOrigin(), nil, false)
	assert.Zero(t, leaves)
	assert.Empty(t, fakeCtx.drawn)
}

func TestRenderRefinesInsteadOfDrawingWhenSSEMissed(t *testing.T) {
	parentBV := unitCubeAtOrigin()
	childBV := bounds.BoundingVolumeFromBox12([12]float64{
		0, 0, 0,
		0.1, 0, 0,
		0, 0.1, 0,
		0, 0, 0.1,
	})
	fakeCtx := &fakeGPUContext{}
	c := newTestCache(fakeCtx)
	c.client = bootstrappedClientForTest(t)
	c.runner = fetchtask.NewRunner(fetchtask.Config{Workers: 1})
	c.runner.Start()
	defer c.runner.Stop()

	c.roots = []string{"parent.glb"}
	c.cache["parent.glb"] = &Tile{
		Bounding:       parentBV,
		OrientedBox:    bounds.NewOrientedBoxFromVolume(parentBV),
		GeometricError: 1e9, // forces a missed SSE budget at any finite distance
		ContentState:   ContentReady,
		Contents:       []gpu.GPUContent{{Mesh: &fakeGPUMesh{}, Texture: &fakeGPUTexture{}}},
		Children:       []string{"child.glb"},
	}
	c.cache["child.glb"] = &Tile{
		Bounding:     childBV,
		OrientedBox:  bounds.NewOrientedBoxFromVolume(childBV),
		ContentState: ContentNone,
		HasParent:    true,
		ParentKey:    "parent.glb",
	}

	leaves := c.Render(cameraLookingAtOrigin(), nil, false)
	require.Equal(t, uint32(1), leaves)
	// the parent itself is never drawn — only the child it refined into.
	assert.Empty(t, fakeCtx.drawn)
	assert.Equal(t, ContentLoading, c.cache["child.glb"].ContentState)
}
