// Package tileapi is the REST client for Google's Photorealistic 3D Tiles
// service: session-token bootstrap, node JSON fetch, and raw GLB download.
package tileapi

import "github.com/geo3d/tileviewer/internal/bounds"

// Node is a single node of the 3D Tiles hierarchy as served by the tile
// API: a bounding volume, optional children, optional leaf content, and a
// geometric error used for screen-space-error refinement.
type Node struct {
	Bounding       Box12    `json:"boundingVolume"`
	Children       []Node   `json:"children,omitempty"`
	Content        *Content `json:"content,omitempty"`
	GeometricError float64  `json:"geometricError"`
}

// Box12 mirrors the wire-format "box" bounding volume: a 12-element array
// of (center, half-x, half-y, half-z).
type Box12 struct {
	Box [12]float64 `json:"box"`
}

// BoundingVolume decodes the node's wire-format box into a
// bounds.BoundingVolume.
func (b Box12) BoundingVolume() bounds.BoundingVolume {
	return bounds.BoundingVolumeFromBox12(b.Box)
}

// Content carries the URI of a node's renderable or linked-subtree payload.
type Content struct {
	URI string `json:"uri"`
}

// nodeEnvelope is the `{ root: Node }` wrapper the tile API wraps every
// node response in.
type nodeEnvelope struct {
	Root Node `json:"root"`
}
