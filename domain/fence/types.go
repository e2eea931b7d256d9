package fence

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

// Adjustment limits. Height stays in [MinHeight, MaxHeight); radius stays in
// [MinRadius, groundDepth*0.5).
const (
	Step      = 5.0
	MinHeight = 0.0
	MaxHeight = 70.0
	MinRadius = 5.0

	DefaultHeight = 20.0
	DefaultRadius = 20.0
)

// Key enumerates the discrete keys the machine reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyCapture
	KeyToggleGroundOnly
	KeyExit
)

func (k Key) String() string {
	switch k {
	case KeyCapture:
		return "capture"
	case KeyToggleGroundOnly:
		return "toggle-ground-only"
	case KeyExit:
		return "exit"
	default:
		return "none"
	}
}

// Params are the fence values read by the renderer every frame.
type Params struct {
	Height     float64
	Radius     float64
	GroundOnly bool
}

// State is a snapshot of everything the machine owns.
type State struct {
	Clicked    image.Point
	ClickedSet bool
	Params
}

func (s State) String() string {
	click := "unset"
	if s.ClickedSet {
		click = fmt.Sprintf("(%d,%d)", s.Clicked.X, s.Clicked.Y)
	}
	return fmt.Sprintf("click=%s height=%.1f radius=%.1f ground-only=%t", click, s.Height, s.Radius, s.GroundOnly)
}

// StateListener is called after every change of State.
type StateListener func(prev, next State)

// Geometry is the part of the camera model the machine consults.
type Geometry interface {
	Unproject(screen image.Point, heightAboveGround float64) (mgl64.Vec3, bool)
	CameraHeight() float64
	ViewProjection() mgl64.Mat4
}

// Collaborators externalize rendering, mask capture and shutdown.
type Collaborators struct {
	Render  func(RenderPlan)
	Capture func() error
	Exit    func()
}

// FenceInstance is one disc to draw.
type FenceInstance struct {
	Center mgl64.Vec3
	Radius float64
}

// Model returns the per-object transform placing a unit disc at the instance.
func (f FenceInstance) Model() mgl64.Mat4 {
	return mgl64.Translate3D(f.Center.X(), f.Center.Y(), f.Center.Z()).
		Mul4(mgl64.Scale3D(f.Radius, f.Radius, f.Radius))
}

// RenderPlan is what the rasterizer draws for one frame.
type RenderPlan struct {
	ViewProjection mgl64.Mat4
	GroundY        float64 // world Y of the ground plane
	DrawGround     bool
	GroundOnly     bool
	Fences         []FenceInstance
}

// HasFence reports whether the frame contains at least one fence instance.
func (p RenderPlan) HasFence() bool { return len(p.Fences) > 0 }

// Event types accepted by Machine.Handle.
type (
	EventClick struct{ X, Y float64 }
	// EventScroll carries a wheel step; only the sign of Delta is used.
	EventScroll struct {
		Delta    float64
		Modifier bool
	}
	EventKey struct{ Key Key }
)
