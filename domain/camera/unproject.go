package camera

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unproject returns the world point on the horizontal plane heightAboveGround above
// the ground that projects to screen. The camera-local frame is forward +Z, right +X,
// down +Y.
//
// ok is false when the pixel's ray does not descend toward the ground (at or above the
// horizon) or when the requested plane lies above the camera.
func (m *Model) Unproject(screen image.Point, heightAboveGround float64) (mgl64.Vec3, bool) {
	x := float64(screen.X)
	y := float64(screen.Y)
	halfW := float64(m.width) * 0.5
	halfH := float64(m.height) * 0.5
	sinT, cosT := math.Sincos(m.tilt)

	zProxy := m.focalLength*sinT + (y-halfH)*cosT
	if zProxy <= 0 || m.cameraHeight < heightAboveGround {
		return mgl64.Vec3{}, false
	}

	t := (m.cameraHeight - heightAboveGround) / zProxy
	local := mgl64.Vec4{(x - halfW) * t, (y - halfH) * t, m.focalLength * t, 1}
	world := m.cameraToWorld.Mul4x1(local)
	return world.Vec3(), true
}

// GroundY is the world Y coordinate of the plane heightAboveGround above the ground.
func (m *Model) GroundY(heightAboveGround float64) float64 {
	return m.cameraHeight - heightAboveGround
}
