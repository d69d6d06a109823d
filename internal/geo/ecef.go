// Package geo converts between WGS84 geodetic coordinates and ECEF
// (Earth-Centered, Earth-Fixed) Cartesian coordinates.
package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WGS84 ellipsoid constants.
const (
	semiMajorAxis     = 6378137.0         // a, meters
	flattening        = 1.0 / 298.257223563 // f
	semiMinorAxis     = semiMajorAxis * (1 - flattening)
	eccentricitySqr   = 2*flattening - flattening*flattening
	secondEccSqr      = (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) / (semiMinorAxis * semiMinorAxis)
)

// LatLonToXYZ converts a WGS84 geodetic position (degrees, degrees, meters)
// to ECEF Cartesian coordinates in meters.
func LatLonToXYZ(latDeg, lonDeg, elevM float64) mgl64.Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	n := semiMajorAxis / math.Sqrt(1-eccentricitySqr*sinLat*sinLat)

	x := (n + elevM) * cosLat * cosLon
	y := (n + elevM) * cosLat * sinLon
	z := (n*(1-eccentricitySqr) + elevM) * sinLat

	return mgl64.Vec3{x, y, z}
}

// XYZToLatLonEle is the inverse of LatLonToXYZ. It uses Bowring's
// closed-form approximation in a single step, with no further iteration,
// which is accurate to better than a millimeter for terrestrial elevations.
func XYZToLatLonEle(xyz mgl64.Vec3) (latDeg, lonDeg, elevM float64) {
	x, y, z := xyz[0], xyz[1], xyz[2]

	lon := math.Atan2(y, x)

	p := math.Hypot(x, y)
	theta := math.Atan2(z*semiMajorAxis, p*semiMinorAxis)
	sinTheta, cosTheta := math.Sincos(theta)

	lat := math.Atan2(
		z+secondEccSqr*semiMinorAxis*sinTheta*sinTheta*sinTheta,
		p-eccentricitySqr*semiMajorAxis*cosTheta*cosTheta*cosTheta,
	)

	sinLat := math.Sin(lat)
	n := semiMajorAxis / math.Sqrt(1-eccentricitySqr*sinLat*sinLat)
	elev := p/math.Cos(lat) - n

	return lat * 180 / math.Pi, lon * 180 / math.Pi, elev
}
