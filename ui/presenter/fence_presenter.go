package presenter

import (
	"image"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/domain/fence"
	"github.com/soocke/virtual-fence-go/ui/images"
	"github.com/soocke/virtual-fence-go/ui/model"
)

// FenceSession is the part of the session the presenter drives.
type FenceSession interface {
	OnClick(x, y float64)
	OnScroll(delta float64, modifier bool)
	OnKey(k fence.Key) error
	OnResize(width, height int) error
	State() fence.State
	Camera() camera.Params
	Closed() bool
	Frame() *image.RGBA
}

// PreviewView shows the rendered scene and the fence state.
type PreviewView interface {
	SetPreview(png []byte)
	SetStateLabel(text string)
}

type previewKey struct {
	state      fence.State
	cam        camera.Params
	maxW, maxH int
}

type preview struct {
	png    []byte
	scaled image.Rectangle
	src    image.Rectangle
}

// Preview box used until the first window size arrives.
const (
	defaultPreviewW = 960
	defaultPreviewH = 540
	minPreviewSide  = 64
)

// FencePresenter forwards view input to the session and keeps the preview in sync
// with the fence state. Rendered previews are cached by state, so toggling back
// to an earlier state does not re-rasterize.
type FencePresenter struct {
	sess   FenceSession
	view   PreviewView
	status *model.StatusModel
	logger *slog.Logger
	cache  *lru.Cache[previewKey, preview]

	maxW, maxH int
	inset      int
	current    preview
	lastKey    previewKey
	shown      bool
	hits       uint64
	misses     uint64
}

// NewFencePresenter builds the presenter with an LRU of cacheSize previews.
func NewFencePresenter(sess FenceSession, view PreviewView, status *model.StatusModel, logger *slog.Logger, cacheSize int) *FencePresenter {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, _ := lru.New[previewKey, preview](cacheSize)
	return &FencePresenter{
		sess:   sess,
		view:   view,
		status: status,
		logger: logger,
		cache:  cache,
		maxW:   defaultPreviewW,
		maxH:   defaultPreviewH,
	}
}

// SetSceneInset sets the distance in pixels from the preview widget's edge to the
// first image pixel. Clicks arrive in widget coordinates.
func (p *FencePresenter) SetSceneInset(px int) {
	if p != nil {
		p.inset = max(px, 0)
	}
}

// OnClick maps a click on the preview to camera pixels.
func (p *FencePresenter) OnClick(x, y int) {
	if p == nil || p.sess == nil {
		return
	}
	x, y = x-p.inset, y-p.inset
	sx, sy := float64(x), float64(y)
	if p.shown {
		sx, sy = images.ToSource(image.Pt(x, y), p.current.scaled, p.current.src)
	}
	p.sess.OnClick(sx, sy)
}

func (p *FencePresenter) OnScroll(delta int, modifier bool) {
	if p == nil || p.sess == nil {
		return
	}
	p.sess.OnScroll(float64(delta), modifier)
}

// OnKey applies a key. A failed capture is logged and counted, never fatal.
func (p *FencePresenter) OnKey(k fence.Key) {
	if p == nil || p.sess == nil {
		return
	}
	if err := p.sess.OnKey(k); err != nil {
		if p.logger != nil {
			p.logger.Error("capture failed", "error", err)
		}
		p.status.OnFailure(err)
	}
}

// OnResize sets the box the preview is fitted into.
func (p *FencePresenter) OnResize(width, height int) {
	if p == nil {
		return
	}
	p.maxW, p.maxH = max(width, minPreviewSide), max(height, minPreviewSide)
}

// MatchWindow resizes the camera output to the preview box.
func (p *FencePresenter) MatchWindow() error {
	if p == nil || p.sess == nil {
		return nil
	}
	return p.sess.OnResize(p.maxW, p.maxH)
}

// Tick refreshes the preview when the state, camera or preview box changed.
func (p *FencePresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.view == nil || p.sess.Closed() {
		return
	}
	key := previewKey{state: p.sess.State(), cam: p.sess.Camera(), maxW: p.maxW, maxH: p.maxH}
	if p.shown && key == p.lastKey {
		return
	}
	pv, ok := p.cache.Get(key)
	if ok {
		p.hits++
	} else {
		p.misses++
		pv = p.render(key)
		p.cache.Add(key, pv)
	}
	p.current, p.lastKey, p.shown = pv, key, true
	p.view.SetPreview(pv.png)
	p.view.SetStateLabel(key.state.String())
	if p.logger != nil {
		p.logger.Debug("preview.refresh", "cached", ok, "hits", p.hits, "misses", p.misses)
	}
}

func (p *FencePresenter) render(key previewKey) preview {
	frame := p.sess.Frame()
	scaled := images.ScaleToFit(frame, key.maxW, key.maxH)
	return preview{png: images.EncodePNG(scaled), scaled: scaled.Bounds(), src: frame.Bounds()}
}

// CacheStats reports preview cache hits and misses.
func (p *FencePresenter) CacheStats() (hits, misses uint64) {
	if p == nil {
		return 0, 0
	}
	return p.hits, p.misses
}
