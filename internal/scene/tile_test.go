package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo3d/tileviewer/internal/tileapi"
)

func glbNode(uri string, children ...tileapi.Node) tileapi.Node {
	return tileapi.Node{
		Content:  &tileapi.Content{URI: uri},
		Children: children,
	}
}

func TestFillCreatesTileOnlyForGLBContent(t *testing.T) {
	tileD := glbNode("tileD.glb")
	linkC := tileapi.Node{Content: &tileapi.Content{URI: "link.json"}, Children: []tileapi.Node{tileD}}
	tileB := glbNode("tileB.glb")
	tileA := glbNode("tileA.glb", tileB, linkC)
	root := tileapi.Node{Children: []tileapi.Node{tileA}}

	cache := make(map[string]*Tile)
	var roots []string

	Fill(root, "", false, cache, &roots, true)

	require.Equal(t, []string{"tileA.glb"}, roots)
	require.Contains(t, cache, "tileA.glb")
	require.Contains(t, cache, "tileB.glb")
	require.Contains(t, cache, "tileD.glb")
	assert.NotContains(t, cache, "link.json")

	tA := cache["tileA.glb"]
	assert.Equal(t, []string{"tileB.glb"}, tA.Children)
	assert.Equal(t, []string{"link.json"}, tA.ChildOptions)
	assert.False(t, tA.HasParent)

	tB := cache["tileB.glb"]
	assert.True(t, tB.HasParent)
	assert.Equal(t, "tileA.glb", tB.ParentKey)
	assert.Empty(t, tB.Children)
	assert.Empty(t, tB.ChildOptions)

	// tileD was reached by flattening through the unresolved link, so it
	// carries no parent link and isn't one of the declared roots either —
	// it sits in the cache as an unreferenced node until a lazy node fetch
	// resolves "link.json" and re-parents a fresh copy under tileA.
	tD := cache["tileD.glb"]
	assert.False(t, tD.HasParent)
	assert.NotContains(t, roots, "tileD.glb")
}

func TestFillSetsGeometricErrorAndBoundingVolume(t *testing.T) {
	n := tileapi.Node{
		Content:        &tileapi.Content{URI: "leaf.glb"},
		GeometricError: 42.5,
		Bounding: tileapi.Box12{Box: [12]float64{
			1, 2, 3,
			4, 0, 0,
			0, 4, 0,
			0, 0, 4,
		}},
	}

	cache := make(map[string]*Tile)
	var roots []string
	Fill(n, "", false, cache, &roots, true)

	tile := cache["leaf.glb"]
	require.NotNil(t, tile)
	assert.Equal(t, 42.5, tile.GeometricError)
	assert.Equal(t, ContentNone, tile.ContentState)
	assert.InDelta(t, 1.0, tile.Bounding.Center[0], 1e-9)
	assert.InDelta(t, 8.0, tile.OrientedBox.Lengths[0], 1e-9)
}

func TestFillNoContentProducesNoTile(t *testing.T) {
	n := tileapi.Node{}
	cache := make(map[string]*Tile)
	var roots []string

	uri := Fill(n, "", false, cache, &roots, true)

	assert.Empty(t, uri)
	assert.Empty(t, cache)
	assert.Empty(t, roots)
}
