// Package scene holds the tile store (the map-keyed cache of Tile, built
// lazily from the tile API's node hierarchy) and the per-frame traversal
// and renderer that walks it.
package scene

import (
	"strings"

	"github.com/geo3d/tileviewer/internal/bounds"
	"github.com/geo3d/tileviewer/internal/fetchtask"
	"github.com/geo3d/tileviewer/internal/gpu"
	"github.com/geo3d/tileviewer/internal/tileapi"
)

// ContentState is a Tile's content lifecycle: it only ever moves forward,
// None -> Loading -> Ready, and is mutated from the render/load loop only.
type ContentState int

const (
	ContentNone ContentState = iota
	ContentLoading
	ContentReady
)

// Tile is a single renderable node of the tile hierarchy: its bounding
// volume (raw and precomputed-oriented forms), its geometric error, its
// content's load state, and the keys of its known children.
//
// Children holds the URIs of directly renderable (.glb) child tiles.
// ChildOptions holds the URIs of unresolved links (subtree JSON) that have
// not been fetched yet; traversal fetches them lazily, once, the first
// time a tile fails to meet its screen-space-error budget.
type Tile struct {
	Bounding       bounds.BoundingVolume
	OrientedBox    bounds.OrientedBox
	GeometricError float64

	ContentState   ContentState
	ContentFuture  fetchtask.ContentFuture
	Contents       []gpu.GPUContent

	ParentKey    string
	HasParent    bool
	Children     []string
	ChildOptions []string
}

// fromNode builds a Tile from a node, but only if the node carries .glb
// content directly — nodes whose content is a link to another subtree (a
// .json URI) or that have no content at all produce no tile here; Fill
// flattens past them to find the tiles underneath.
func fromNode(n tileapi.Node, parentKey string, hasParent bool) (uri string, tile Tile, ok bool) {
	if n.Content == nil || !strings.Contains(n.Content.URI, ".glb") {
		return "", Tile{}, false
	}

	bv := n.Bounding.BoundingVolume()
	return n.Content.URI, Tile{
		Bounding:       bv,
		OrientedBox:    bounds.NewOrientedBoxFromVolume(bv),
		GeometricError: n.GeometricError,
		ContentState:   ContentNone,
		ParentKey:      parentKey,
		HasParent:      hasParent,
	}, true
}

// Fill recursively walks a node hierarchy, inserting a Tile into cache for
// every node that carries .glb content, and returns that node's own
// content URI (whatever it is — .glb or a link) to its caller so the
// caller can decide whether it names a renderable child or an unresolved
// link. Nodes with no tile of their own (pure .json links, or nodes with
// no content) are flattened through: Fill still recurses into their
// children, but those children get no parent link and are not added to
// any ancestor's Children; they are recorded as roots only when isRoot
// is set.
func Fill(n tileapi.Node, parentKey string, hasParent bool, cache map[string]*Tile, roots *[]string, isRoot bool) string {
	uri, tile, ok := fromNode(n, parentKey, hasParent)
	if ok {
		for _, child := range n.Children {
			childURI := Fill(child, uri, true, cache, roots, false)
			if childURI == "" {
				continue
			}
			if strings.Contains(childURI, ".glb") {
				tile.Children = append(tile.Children, childURI)
			} else {
				tile.ChildOptions = append(tile.ChildOptions, childURI)
			}
		}
		cache[uri] = &tile
		if isRoot {
			*roots = append(*roots, uri)
		}
	} else {
		// A node with no tile of its own contributes no parent key: a
		// flattened-through child's parent link is dropped rather than
		// inherited from the nearest real ancestor, matching the
		// original traversal.
		for _, child := range n.Children {
			Fill(child, "", false, cache, roots, isRoot)
		}
	}

	if n.Content != nil {
		return n.Content.URI
	}
	return ""
}
