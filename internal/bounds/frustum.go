package bounds

import "github.com/go-gl/mathgl/mgl64"

// Frustum holds the planes actually used for tile culling: Left, Right,
// Bottom, Top, and a fifth plane that is either the standard projective far
// plane or, for a planet-scale viewer, the planet-aware substitute plane
// described below. Near is intentionally absent — the four side planes
// already meet at the camera and reject geometry behind it, so a
// conventional near plane adds nothing and 3D-Tiles traversal never relies
// on one.
type Frustum struct {
	Planes [5]Plane
}

// FrustumFromViewProj builds a Frustum from the four standard side planes
// plus the conventional projective far plane.
func FrustumFromViewProj(vp mgl64.Mat4) Frustum {
	all := ExtractPlanes(vp)
	return Frustum{Planes: [5]Plane{all[0], all[1], all[2], all[3], all[5]}}
}

// FrustumWithOriginFar is FrustumFromViewProj but with the far plane
// replaced by a plane through the world origin whose inward normal points
// toward the camera. For a globe viewer the conventional far plane sits at
// the horizon and is useless; this substitute instead discards every tile
// on the opposite side of the planet from the camera.
func FrustumWithOriginFar(vp mgl64.Mat4, cameraPos mgl64.Vec3) Frustum {
	f := FrustumFromViewProj(vp)
	f.Planes[4] = Plane{Normal: cameraPos.Normalize(), D: 0}
	return f
}
