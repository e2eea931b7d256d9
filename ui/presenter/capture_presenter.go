package presenter

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/virtual-fence-go/domain/session"
	"github.com/soocke/virtual-fence-go/storage"
	"github.com/soocke/virtual-fence-go/ui/images"
	"github.com/soocke/virtual-fence-go/ui/model"
)

// MaskSaver persists a mask image.
type MaskSaver func(path string, mask *image.Gray) error

// CaptureRecorder narrows what presenter needs from the capture log.
type CaptureRecorder interface {
	Record(ctx context.Context, rec storage.CaptureRecord) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit int) ([]storage.CaptureRecord, error)
}

// CaptureView shows a thumbnail of the last mask.
type CaptureView interface {
	SetMask(png []byte)
}

const (
	maskThumbW    = 320
	maskThumbH    = 180
	recordTimeout = 2 * time.Second
)

// CapturePresenter owns what happens to a captured mask: it is written to disk,
// logged to the capture store and shown as a thumbnail.
type CapturePresenter struct {
	path   string
	save   MaskSaver
	store  CaptureRecorder
	status *model.StatusModel
	view   CaptureView
	logger *slog.Logger
}

func NewCapturePresenter(path string, save MaskSaver, store CaptureRecorder, status *model.StatusModel, view CaptureView, logger *slog.Logger) *CapturePresenter {
	return &CapturePresenter{path: path, save: save, store: store, status: status, view: view, logger: logger}
}

// OnCapture is the session capture handler. Saving the mask is required; the
// capture log is best effort.
func (c *CapturePresenter) OnCapture(res session.Result) error {
	if c == nil || c.save == nil {
		return nil
	}
	snap := res.Snapshot
	if err := c.save(c.path, snap.Mask); err != nil {
		return fmt.Errorf("save mask: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("fence mask saved", "path", c.path, "coverage", snap.Coverage, "id", snap.ID.String())
	}
	c.status.OnCapture(c.path, snap.Coverage)

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := c.store.Record(ctx, recordFor(res, c.path)); err != nil {
			if c.logger != nil {
				c.logger.Warn("capture log write failed", "error", err)
			}
		} else {
			c.status.OnLogged(snap.CapturedAt)
		}
	}
	if c.view != nil {
		c.view.SetMask(images.EncodePNG(images.ScaleToFit(snap.Mask, maskThumbW, maskThumbH)))
	}
	return nil
}

// LoadHistory reads the capture log size and the newest entry into the status
// model. Without a store it does nothing.
func (c *CapturePresenter) LoadHistory(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	n, err := c.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("load capture history: %w", err)
	}
	recent, err := c.store.List(ctx, 1)
	if err != nil {
		return fmt.Errorf("load capture history: %w", err)
	}
	var last time.Time
	if len(recent) > 0 {
		last = recent[0].CapturedAt
	}
	c.status.OnHistory(n, last)
	if c.logger != nil {
		c.logger.Info("capture log loaded", "captures", n, "last", last)
	}
	return nil
}

func recordFor(res session.Result, path string) storage.CaptureRecord {
	snap := res.Snapshot
	rec := storage.CaptureRecord{
		ID:          snap.ID,
		CapturedAt:  snap.CapturedAt,
		ClickX:      res.State.Clicked.X,
		ClickY:      res.State.Clicked.Y,
		FenceHeight: res.State.Height,
		FenceRadius: res.State.Radius,
		Covered:     snap.Covered,
		Coverage:    snap.Coverage,
		MaskPath:    path,
	}
	if snap.Mask != nil {
		rec.Width, rec.Height = snap.Mask.Rect.Dx(), snap.Mask.Rect.Dy()
	}
	if res.WorldOK {
		rec.World = &[3]float64{res.World.X(), res.World.Y(), res.World.Z()}
	}
	return rec
}
