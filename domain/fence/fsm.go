package fence

import (
	"image"
	"log/slog"
	"math"
)

// Machine owns the clicked point and fence parameters and applies interactive events
// to them. It is not safe for concurrent use; all events come from one UI thread.
type Machine struct {
	state       State
	groundDepth float64
	geom        Geometry
	actions     Collaborators
	logger      *slog.Logger
	listeners   []StateListener
	closed      bool
}

// NewMachine returns a machine with no clicked point. groundDepth bounds the radius.
func NewMachine(logger *slog.Logger, geom Geometry, groundDepth float64, initial Params, actions Collaborators) *Machine {
	if initial.Height < MinHeight || initial.Height >= MaxHeight {
		initial.Height = DefaultHeight
	}
	initial.Radius = initialRadius(initial.Radius, groundDepth*0.5)
	return &Machine{
		state:       State{Params: initial},
		groundDepth: groundDepth,
		geom:        geom,
		actions:     actions,
		logger:      logger,
	}
}

// SetCollaborators replaces the render/capture/exit callbacks.
func (m *Machine) SetCollaborators(actions Collaborators) { m.actions = actions }

// AddListener registers a callback invoked after each state change.
func (m *Machine) AddListener(l StateListener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

func (m *Machine) Current() State { return m.state }
func (m *Machine) Params() Params { return m.state.Params }
func (m *Machine) Closed() bool   { return m.closed }

// ClickedPoint returns the last clicked pixel; ok is false before the first click.
func (m *Machine) ClickedPoint() (image.Point, bool) {
	return m.state.Clicked, m.state.ClickedSet
}

// initialRadius keeps r in [MinRadius, limit), preferring DefaultRadius when r is
// out of range. A limit at or below MinRadius leaves MinRadius.
func initialRadius(r, limit float64) float64 {
	if r >= MinRadius && r < limit {
		return r
	}
	if DefaultRadius < limit {
		return DefaultRadius
	}
	return MinRadius
}

// MaxRadius is the exclusive upper bound of the fence radius.
func (m *Machine) MaxRadius() float64 { return m.groundDepth * 0.5 }

// Handle applies one event. Unknown events are ignored. The returned error comes
// from the capture collaborator only.
func (m *Machine) Handle(ev any) error {
	if m.closed {
		return nil
	}
	switch e := ev.(type) {
	case EventClick:
		m.update(func(s *State) {
			s.Clicked = image.Pt(int(math.Round(e.X)), int(math.Round(e.Y)))
			s.ClickedSet = true
		})
	case EventScroll:
		m.scroll(e)
	case EventKey:
		return m.key(e.Key)
	default:
		if m.logger != nil {
			m.logger.Debug("fence event ignored", "event", ev)
		}
	}
	return nil
}

func (m *Machine) scroll(e EventScroll) {
	if !m.state.ClickedSet || e.Delta == 0 || math.IsNaN(e.Delta) {
		return
	}
	up := e.Delta > 0
	if e.Modifier {
		m.update(func(s *State) { s.Height = stepHeight(s.Height, up) })
		return
	}
	limit := m.MaxRadius()
	m.update(func(s *State) { s.Radius = stepRadius(s.Radius, up, limit) })
}

func (m *Machine) key(k Key) error {
	switch k {
	case KeyCapture:
		return m.captureOnce()
	case KeyToggleGroundOnly:
		m.update(func(s *State) { s.GroundOnly = !s.GroundOnly })
	case KeyExit:
		m.closed = true
		if m.logger != nil {
			m.logger.Info("fence session exit")
		}
		if m.actions.Exit != nil {
			m.actions.Exit()
		}
	}
	return nil
}

// captureOnce renders one ground-only frame, captures it, and leaves ground-only off.
func (m *Machine) captureOnce() error {
	m.update(func(s *State) { s.GroundOnly = true })
	if m.actions.Render != nil {
		m.actions.Render(m.Plan())
	}
	var err error
	if m.actions.Capture != nil {
		err = m.actions.Capture()
	}
	m.update(func(s *State) { s.GroundOnly = false })
	if err != nil && m.logger != nil {
		m.logger.Error("fence capture failed", "error", err)
	}
	return err
}

func (m *Machine) update(fn func(*State)) {
	prev := m.state
	fn(&m.state)
	next := m.state
	if prev == next {
		return
	}
	if m.logger != nil {
		m.logger.Debug("fence state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range m.listeners {
		l(prev, next)
	}
}

// Plan decides what to draw for the current state. It has no side effects.
func (m *Machine) Plan() RenderPlan {
	s := m.state
	plan := RenderPlan{DrawGround: !s.GroundOnly, GroundOnly: s.GroundOnly}
	if m.geom == nil {
		return plan
	}
	plan.ViewProjection = m.geom.ViewProjection()
	plan.GroundY = m.geom.CameraHeight()
	if !s.ClickedSet {
		return plan
	}
	center, ok := m.geom.Unproject(s.Clicked, s.Height)
	if !ok {
		return plan
	}
	if !s.GroundOnly {
		plan.Fences = append(plan.Fences, FenceInstance{Center: center, Radius: s.Radius})
	}
	base := center
	base[1] = plan.GroundY
	plan.Fences = append(plan.Fences, FenceInstance{Center: base, Radius: s.Radius})
	return plan
}

func stepHeight(h float64, up bool) float64 {
	if up {
		h += Step
		if h >= MaxHeight {
			h -= Step
		}
		return h
	}
	h -= Step
	if h < MinHeight {
		h = MinHeight
	}
	return h
}

func stepRadius(r float64, up bool, limit float64) float64 {
	if up {
		r += Step
		if r >= limit {
			r -= Step
		}
		return r
	}
	r -= Step
	if r < MinRadius {
		r = MinRadius
	}
	return r
}
