package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clip planes of the perspective projection.
const (
	NearPlane = 1.0
	FarPlane  = 10000.0
)

// ErrInvalidCamera is returned when a configuration would produce a degenerate projection.
var ErrInvalidCamera = errors.New("invalid camera configuration")

// Params are the scalar inputs of a pinhole camera. Angles are in degrees.
type Params struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FocalLength float64 `json:"focal_length"`
	PanDeg      float64 `json:"pan_deg"`
	TiltDeg     float64 `json:"tilt_deg"`
	HeightM     float64 `json:"height_m"`
}

// DefaultParams returns the camera used before the first explicit configuration.
func DefaultParams() Params {
	return Params{Width: 1280, Height: 720, FocalLength: 800, PanDeg: 0, TiltDeg: 20, HeightM: 70}
}

// Validate reports the first field that cannot produce a finite projection.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0:
		return fmt.Errorf("%w: width %d", ErrInvalidCamera, p.Width)
	case p.Height <= 0:
		return fmt.Errorf("%w: height %d", ErrInvalidCamera, p.Height)
	case !(p.FocalLength > 0) || math.IsInf(p.FocalLength, 0):
		return fmt.Errorf("%w: focal length %v", ErrInvalidCamera, p.FocalLength)
	}
	fields := []struct {
		name string
		v    float64
	}{{"pan", p.PanDeg}, {"tilt", p.TiltDeg}, {"camera height", p.HeightM}}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s %v", ErrInvalidCamera, f.name, f.v)
		}
	}
	return nil
}

// Model is a fixed pinhole camera at the world origin together with its derived
// transforms. The zero value is not usable; construct with New.
//
// World axes: +Y points down toward the ground, which lies on the plane Y = camera height.
type Model struct {
	inputs        Params
	width, height int
	focalLength   float64
	pan, tilt     float64 // radians
	cameraHeight  float64
	position      mgl64.Vec3

	panToCamera   mgl64.Mat4
	tiltToCamera  mgl64.Mat4
	cameraToWorld mgl64.Mat4
	view          mgl64.Mat4
	projection    mgl64.Mat4
}

// New returns a model configured with p.
func New(p Params) (*Model, error) {
	m := &Model{}
	if err := m.Configure(p); err != nil {
		return nil, err
	}
	return m, nil
}

// Configure replaces every input and recomputes all derived matrices. On error the
// model keeps its previous state.
func (m *Model) Configure(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	next := Model{
		inputs:       p,
		width:        p.Width,
		height:       p.Height,
		focalLength:  p.FocalLength,
		pan:          mgl64.DegToRad(p.PanDeg),
		tilt:         mgl64.DegToRad(p.TiltDeg),
		cameraHeight: p.HeightM,
		position:     mgl64.Vec3{0, 0, 0},
	}
	next.panToCamera = mgl64.HomogRotate3D(next.pan, mgl64.Vec3{0, -1, 0})
	next.tiltToCamera = mgl64.HomogRotate3D(next.tilt, mgl64.Vec3{1, 0, 0})
	next.cameraToWorld = mgl64.Translate3D(next.position.X(), next.position.Y(), next.position.Z()).
		Mul4(next.panToCamera.Inv()).
		Mul4(next.tiltToCamera.Inv())

	target := next.cameraToWorld.Mul4x1(mgl64.Vec4{0, 0, 1, 1}).Vec3()
	up := next.cameraToWorld.Mul4x1(mgl64.Vec4{0, -1, 0, 0}).Vec3()
	next.view = mgl64.LookAtV(next.position, target, up)
	next.projection = perspective(next.width, next.height, next.focalLength)

	*m = next
	return nil
}

// Resize changes the pixel dimensions. Only the projection depends on them; the pan,
// tilt and camera-to-world transforms are left untouched.
func (m *Model) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: resize to %dx%d", ErrInvalidCamera, width, height)
	}
	m.width, m.height = width, height
	m.inputs.Width, m.inputs.Height = width, height
	m.projection = perspective(width, height, m.focalLength)
	return nil
}

func perspective(width, height int, focalLength float64) mgl64.Mat4 {
	fovy := 2 * math.Atan(float64(height)/(2*focalLength))
	aspect := float64(width) / float64(height)
	return mgl64.Perspective(fovy, aspect, NearPlane, FarPlane)
}

// Params returns the current inputs as they were given.
func (m *Model) Params() Params { return m.inputs }

func (m *Model) Width() int                { return m.width }
func (m *Model) Height() int               { return m.height }
func (m *Model) FocalLength() float64      { return m.focalLength }
func (m *Model) PanAngle() float64         { return m.pan }
func (m *Model) TiltAngle() float64        { return m.tilt }
func (m *Model) CameraHeight() float64     { return m.cameraHeight }
func (m *Model) Position() mgl64.Vec3      { return m.position }
func (m *Model) PanToCamera() mgl64.Mat4   { return m.panToCamera }
func (m *Model) TiltToCamera() mgl64.Mat4  { return m.tiltToCamera }
func (m *Model) CameraToWorld() mgl64.Mat4 { return m.cameraToWorld }
func (m *Model) View() mgl64.Mat4          { return m.view }
func (m *Model) Projection() mgl64.Mat4    { return m.projection }

// ViewProjection is the matrix used to draw world-space geometry.
func (m *Model) ViewProjection() mgl64.Mat4 { return m.projection.Mul4(m.view) }

// ModelViewProjection appends a per-object model transform to ViewProjection.
func (m *Model) ModelViewProjection(model mgl64.Mat4) mgl64.Mat4 {
	return m.ViewProjection().Mul4(model)
}

// Project maps a world point to pixel coordinates with the origin at the top-left.
// ok is false for points on or behind the camera plane.
func (m *Model) Project(world mgl64.Vec3) (x, y float64, ok bool) {
	clip := m.ViewProjection().Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	x = (ndcX + 1) * 0.5 * float64(m.width)
	y = (1 - ndcY) * 0.5 * float64(m.height)
	return x, y, true
}
