package session

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/domain/capture"
	"github.com/soocke/virtual-fence-go/domain/fence"
	"github.com/soocke/virtual-fence-go/domain/render"
)

// Options configure a Session.
type Options struct {
	Camera      camera.Params
	GroundWidth float64
	GroundDepth float64
	Fence       fence.Params
}

// Result is handed to the capture handler after every successful capture.
type Result struct {
	Snapshot capture.MaskSnapshot
	State    fence.State
	Camera   camera.Params
	// World is the fence centre on the ground plane; WorldOK is false when the
	// clicked pixel did not resolve.
	World   mgl64.Vec3
	WorldOK bool
}

// Session owns one camera, its fence machine, the rasterizer and the mask capture
// service. Every method must be called from the UI thread.
type Session struct {
	logger    *slog.Logger
	cam       *camera.Model
	machine   *fence.Machine
	raster    *render.Rasterizer
	capture   capture.CaptureService
	onCapture func(Result) error
	onExit    func()
}

// New validates the camera and builds all collaborators.
func New(logger *slog.Logger, opts Options) (*Session, error) {
	cam, err := camera.New(opts.Camera)
	if err != nil {
		return nil, err
	}
	s := &Session{
		logger:  logger,
		cam:     cam,
		raster:  render.New(logger, cam.Width(), cam.Height(), opts.GroundWidth, opts.GroundDepth),
		capture: capture.NewCaptureService(logger, cam.Width(), cam.Height()),
	}
	s.machine = fence.NewMachine(logger, cam, opts.GroundDepth, opts.Fence, fence.Collaborators{
		Render:  s.raster.Draw,
		Capture: s.captureFrame,
		Exit:    s.exit,
	})
	return s, nil
}

// SetCaptureHandler registers the callback receiving each captured mask.
func (s *Session) SetCaptureHandler(fn func(Result) error) { s.onCapture = fn }

// SetExitHandler registers the callback run once when the exit key is handled.
func (s *Session) SetExitHandler(fn func()) { s.onExit = fn }

// AddListener forwards to the fence machine.
func (s *Session) AddListener(l fence.StateListener) { s.machine.AddListener(l) }

func (s *Session) State() fence.State                 { return s.machine.Current() }
func (s *Session) Camera() camera.Params              { return s.cam.Params() }
func (s *Session) Closed() bool                       { return s.machine.Closed() }
func (s *Session) CaptureStats() capture.CaptureStats { return s.capture.Stats() }

// OnClick records the clicked pixel.
func (s *Session) OnClick(x, y float64) { _ = s.machine.Handle(fence.EventClick{X: x, Y: y}) }

// OnScroll adjusts the radius, or the height when modifier is held.
func (s *Session) OnScroll(delta float64, modifier bool) {
	_ = s.machine.Handle(fence.EventScroll{Delta: delta, Modifier: modifier})
}

// OnKey applies a discrete key. Only a capture can fail.
func (s *Session) OnKey(k fence.Key) error { return s.machine.Handle(fence.EventKey{Key: k}) }

// OnResize changes the output resolution keeping the focal length.
func (s *Session) OnResize(width, height int) error {
	if err := s.cam.Resize(width, height); err != nil {
		return err
	}
	s.resizeBuffers()
	return nil
}

// Configure replaces the whole camera. A rejected configuration leaves the
// session untouched.
func (s *Session) Configure(p camera.Params) error {
	if err := s.cam.Configure(p); err != nil {
		return err
	}
	s.resizeBuffers()
	if s.logger != nil {
		s.logger.Info("camera configured",
			"width", p.Width, "height", p.Height, "focal_length", p.FocalLength,
			"pan_deg", p.PanDeg, "tilt_deg", p.TiltDeg, "height_m", p.HeightM)
	}
	return nil
}

func (s *Session) resizeBuffers() {
	w, h := s.cam.Width(), s.cam.Height()
	s.raster.Resize(w, h)
	s.capture.Resize(w, h)
}

// Plan is the render plan for the current state.
func (s *Session) Plan() fence.RenderPlan { return s.machine.Plan() }

// Frame renders the current state and returns a copy of the frame.
func (s *Session) Frame() *image.RGBA {
	s.raster.Draw(s.machine.Plan())
	return s.raster.Image()
}

func (s *Session) captureFrame() error {
	snap, err := s.capture.Capture(s.raster)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	state := s.machine.Current()
	res := Result{Snapshot: snap, State: state, Camera: s.cam.Params()}
	if state.ClickedSet {
		res.World, res.WorldOK = s.cam.Unproject(state.Clicked, 0)
	}
	if s.logger != nil {
		s.logger.Info("fence mask captured",
			"id", snap.ID.String(), "covered", snap.Covered, "coverage", snap.Coverage)
	}
	if s.onCapture != nil {
		return s.onCapture(res)
	}
	return nil
}

func (s *Session) exit() {
	if s.onExit != nil {
		s.onExit()
	}
}
