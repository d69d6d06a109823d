// Package gpxroute decodes a GPX track into ECEF world-space points for
// overlay on the tile scene. It is a thin, optional collaborator: it has
// no dependency on the tile store or renderer and exposes only a
// conversion from bytes to world-space points.
package gpxroute

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/geo3d/tileviewer/internal/geo"
)

// geoidOffset is added to every point's displayed elevation; it is
// specific to the region the original track data was recorded over and
// is carried through unchanged from that source.
const geoidOffset = 12620.0

// Point is a single track point with both its geodetic coordinates and
// its converted ECEF world-space position.
type Point struct {
	Lat, Lon, Ele float64
	XYZ           mgl64.Vec3
}

// Route is a parsed GPX track: the underlying document plus every point
// across all tracks and segments that carries an elevation value. Points
// without elevation are dropped — there is no way to place them in ECEF
// space without one.
type Route struct {
	GPX    *gpx.GPX
	Points []Point
}

// Load reads and parses a GPX document from r, converting every
// elevation-tagged track point to ECEF.
func Load(r io.Reader) (Route, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Route{}, fmt.Errorf("read gpx: %w", err)
	}

	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return Route{}, fmt.Errorf("parse gpx: %w", err)
	}

	var points []Point
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				if !p.Elevation.NotNull() {
					continue
				}
				ele := p.Elevation.Value()
				points = append(points, Point{
					Lat: p.Latitude,
					Lon: p.Longitude,
					Ele: ele + geoidOffset,
					XYZ: geo.LatLonToXYZ(p.Latitude, p.Longitude, ele),
				})
			}
		}
	}

	return Route{GPX: doc, Points: points}, nil
}

// Polyline returns the route's points as consecutive line-segment
// endpoint pairs (a line list, not a line strip): point i-1 and point i
// for every i > 0, in world space, ready for a line-mesh renderer.
func (r Route) Polyline() []mgl64.Vec3 {
	if len(r.Points) < 2 {
		return nil
	}
	segments := make([]mgl64.Vec3, 0, (len(r.Points)-1)*2)
	for i := 1; i < len(r.Points); i++ {
		segments = append(segments, r.Points[i-1].XYZ, r.Points[i].XYZ)
	}
	return segments
}
