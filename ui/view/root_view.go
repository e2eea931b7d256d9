package view

import (
	"log/slog"

	"github.com/soocke/virtual-fence-go/config"
	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/domain/fence"
	"github.com/soocke/virtual-fence-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Input receives user input from the view. Coordinates are relative to the scene
// preview.
type Input interface {
	OnClick(x, y int)
	OnScroll(delta int, modifier bool)
	OnKey(k fence.Key)
	OnResize(width, height int)
}

// CameraControl is what the camera panel needs from the session.
type CameraControl struct {
	Current     func() camera.Params
	Configure   func(camera.Params) error
	MatchWindow func() (camera.Params, error)
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Status      StatusBar
	CameraPanel CameraPanel
	Preview     FencePreview

	// Widgets
	StateLabel *LabelWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout and binds mouse and keyboard input to in.
func (rv *RootView) Build(in Input, cam CameraControl, onExit func()) {
	if rv == nil {
		return
	}
	// Row 0: state label and buttons
	rv.StateLabel = Label(Txt("click=unset"), Borderwidth(1), Relief("ridge"))
	Grid(rv.StateLabel, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	captureBtn := TButton(Txt("Capture Mask (c)"), Style(theme.StylePrimaryButton), Command(func() { in.OnKey(fence.KeyCapture) }))
	Grid(captureBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	flipBtn := TButton(Txt("Ground Only (r)"), Command(func() { in.OnKey(fence.KeyToggleGroundOnly) }))
	Grid(flipBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit (q)"), Style(theme.StyleDangerButton), Command(onExit))
	Grid(exitBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Camera panel rows
	current := camera.DefaultParams()
	if cam.Current != nil {
		current = cam.Current()
	}
	rv.CameraPanel = NewCameraPanel(rv.cfg, rv.cfgPath, rv.logger, cam.Configure, cam.MatchWindow)
	row := rv.CameraPanel.Build(1, current)

	rv.Preview = NewFencePreview(row)
	rv.Status = NewStatusBar(row + 1)

	rv.bind(in, onExit)
	if rv.cfg != nil {
		w := rv.cfg.PreviewWidth
		in.OnResize(w, w*current.Height/max(current.Width, 1))
	}
}

func (rv *RootView) bind(in Input, onExit func()) {
	scene := rv.Preview.Scene()
	Bind(scene, "<Button-1>", Command(func(e *Event) { in.OnClick(e.X, e.Y) }))
	Bind(App, "<MouseWheel>", Command(func(e *Event) { in.OnScroll(e.Delta, false) }))
	Bind(App, "<Control-MouseWheel>", Command(func(e *Event) { in.OnScroll(e.Delta, true) }))
	Bind(App, "<KeyPress-c>", Command(func() { in.OnKey(fence.KeyCapture) }))
	Bind(App, "<KeyPress-r>", Command(func() { in.OnKey(fence.KeyToggleGroundOnly) }))
	Bind(App, "<KeyPress-q>", Command(onExit))
	Bind(App, "<Escape>", Command(onExit))
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetPreview proxies to the scene preview.
func (rv *RootView) SetPreview(png []byte) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.SetPreview(png)
	}
}

// SetMask proxies to the mask thumbnail.
func (rv *RootView) SetMask(png []byte) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.SetMask(png)
	}
}

// SetStatus updates the status bar.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStatus(text)
	}
}
