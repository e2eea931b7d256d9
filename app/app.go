package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/virtual-fence-go/debug"
	"github.com/soocke/virtual-fence-go/domain/fence"
	"github.com/soocke/virtual-fence-go/ui/presenter"
	"github.com/soocke/virtual-fence-go/ui/theme"
)

const (
	tick = 50 * time.Millisecond
)

type app struct {
	title   string
	c       *AppContainer
	logger  *slog.Logger
	afterID string
	cancel  context.CancelFunc
	closed  bool
}

func NewApp(title string, c *AppContainer) *app {
	a := &app{title: title, c: c, logger: c.Logger}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.requestExit)
	return a
}

// Start builds the UI, schedules the update loop and blocks until the window closes.
func (a *app) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	theme.InitStyles()
	c := a.c
	c.Session.SetExitHandler(a.exitHandler)
	c.RootView.Build(c.FencePresenter, c.CameraControl(), a.requestExit)
	c.Loop = presenter.NewLoop(c.FencePresenter, c.StatusPresenter, a.scheduleUpdate)

	if c.Config.Debug {
		debug.StartRuntimeLogger(ctx, time.Duration(c.Config.DebugIntervalSeconds)*time.Second, a.logger)
	}
	cam := c.Session.Camera()
	a.logger.Info("fence session started",
		"camera", fmt.Sprintf("%dx%d f=%.0f pan=%.1f tilt=%.1f h=%.1f", cam.Width, cam.Height, cam.FocalLength, cam.PanDeg, cam.TiltDeg, cam.HeightM),
		"mask_path", c.Config.MaskPath)

	c.Loop.Tick()
	App.Wait()
	if err := c.Close(); err != nil {
		a.logger.Error("close capture log", "error", err)
	}
}

// requestExit routes window-close and exit buttons through the fence machine so
// it ends up closed exactly once.
func (a *app) requestExit() {
	if a.c.Session.Closed() {
		a.exitHandler()
		return
	}
	a.c.FencePresenter.OnKey(fence.KeyExit)
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	if a.cancel != nil {
		a.cancel()
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// TclAfter keeps the loop on Tk's event thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}
