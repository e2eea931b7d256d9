package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/virtual-fence-go/config"
	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/domain/capture"
	"github.com/soocke/virtual-fence-go/domain/fence"
	"github.com/soocke/virtual-fence-go/domain/session"
	"github.com/soocke/virtual-fence-go/storage"
	"github.com/soocke/virtual-fence-go/ui/model"
	"github.com/soocke/virtual-fence-go/ui/presenter"
	"github.com/soocke/virtual-fence-go/ui/view"
)

const historyTimeout = 2 * time.Second

// AppContainer assembles the session, storage, models, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Session    *session.Session
	Store      *storage.Store
	Status     *model.StatusModel
	RootView   *view.RootView

	// Presenters
	FencePresenter   *presenter.FencePresenter
	CapturePresenter *presenter.CapturePresenter
	StatusPresenter  *presenter.StatusPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. Side effects are limited to opening
// the capture log; widgets are created later by RootView.Build.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	sess, err := session.New(logger, session.Options{
		Camera:      cfg.Camera,
		GroundWidth: cfg.GroundWidth,
		GroundDepth: cfg.GroundDepth,
		Fence:       fence.Params{Height: cfg.FenceHeight, Radius: cfg.FenceRadius},
	})
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	c.Session = sess

	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		// The capture log is optional; masks are still written without it.
		logger.Warn("capture log unavailable", "path", cfg.DBPath, "error", err)
	} else {
		c.Store = store
	}

	c.Status = model.NewStatusModel()
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.FencePresenter = presenter.NewFencePresenter(sess, c.RootView, c.Status, logger, cfg.PreviewCacheSize)
	var recorder presenter.CaptureRecorder
	if c.Store != nil {
		recorder = c.Store
	}
	c.CapturePresenter = presenter.NewCapturePresenter(cfg.MaskPath, capture.SaveMask, recorder, c.Status, c.RootView, logger)
	c.StatusPresenter = presenter.NewStatusPresenter(c.Status, c.RootView)
	sess.SetCaptureHandler(c.CapturePresenter.OnCapture)
	c.FencePresenter.SetSceneInset(view.SceneInset)

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := c.CapturePresenter.LoadHistory(ctx); err != nil {
		logger.Warn("capture log history unavailable", "error", err)
	}
	return c, nil
}

// CameraControl exposes session camera operations to the camera panel.
func (c *AppContainer) CameraControl() view.CameraControl {
	return view.CameraControl{
		Current:   c.Session.Camera,
		Configure: c.Session.Configure,
		MatchWindow: func() (camera.Params, error) {
			if err := c.FencePresenter.MatchWindow(); err != nil {
				return c.Session.Camera(), err
			}
			return c.Session.Camera(), nil
		},
	}
}

// Close releases the capture log.
func (c *AppContainer) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
