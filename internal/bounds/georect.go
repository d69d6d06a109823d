package bounds

import "github.com/geo3d/tileviewer/internal/geo"

// FromGeoRect builds a BoundingVolume that wraps the ground rectangle
// spanned by two geodetic corners (lon1,lat1)-(lon2,lat2) at sea level,
// with a fixed 4km half-height normal to the ground plane. It exists to
// build synthetic bounding volumes for tests without needing real tileset
// JSON.
func FromGeoRect(lon1, lat1, lon2, lat2 float64) BoundingVolume {
	const halfHeight = 4000.0

	a := geo.LatLonToXYZ(lat1, lon1, 0)
	b := geo.LatLonToXYZ(lat2, lon1, 0)
	c := geo.LatLonToXYZ(lat1, lon2, 0)

	xAxis := b.Sub(a).Mul(0.5)
	yAxis := c.Sub(a).Mul(0.5)
	zAxis := xAxis.Normalize().Cross(yAxis.Normalize()).Mul(halfHeight)

	return BoundingVolume{
		Center: a.Add(xAxis).Add(yAxis),
		X:      xAxis,
		Y:      yAxis,
		Z:      zAxis,
	}
}
