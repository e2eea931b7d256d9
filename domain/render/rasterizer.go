package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/vector"

	"github.com/soocke/virtual-fence-go/domain/fence"
)

// Scene colors. The fence is (0.5, 0.125, 0.9) in unit RGB.
var (
	ClearColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	GroundColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	FenceColor  = color.RGBA{R: 127, G: 32, B: 229, A: 255}
)

// DiscStepDeg is the angular step between rim vertices of a fence disc.
const DiscStepDeg = 5

// guardBand widens the side clip planes so the fill never sees huge coordinates
// while anything inside the viewport is still drawn exactly.
const guardBand = 2.0

// ErrShortBuffer is returned by ReadRed when dst cannot hold a full frame.
var ErrShortBuffer = errors.New("render: destination shorter than frame")

// Rasterizer draws render plans into an RGBA framebuffer. It is the software
// stand-in for the GPU draw calls and also serves the red-channel readback used
// by mask capture. Not safe for concurrent use.
type Rasterizer struct {
	frame       *image.RGBA
	fill        *vector.Rasterizer
	groundWidth float64
	groundDepth float64
	disc        []mgl64.Vec4
	logger      *slog.Logger
	frames      uint64
}

// New allocates a width x height framebuffer. groundWidth and groundDepth size the
// ground quad along world Z and X.
func New(logger *slog.Logger, width, height int, groundWidth, groundDepth float64) *Rasterizer {
	r := &Rasterizer{
		groundWidth: groundWidth,
		groundDepth: groundDepth,
		disc:        unitDisc(DiscStepDeg),
		logger:      logger,
	}
	r.Resize(width, height)
	return r
}

// unitDisc returns the rim of a unit disc in the XZ plane.
func unitDisc(stepDeg int) []mgl64.Vec4 {
	rim := make([]mgl64.Vec4, 0, 360/stepDeg)
	for deg := 0; deg < 360; deg += stepDeg {
		a := mgl64.DegToRad(float64(deg))
		rim = append(rim, mgl64.Vec4{math.Cos(a), 0, math.Sin(a), 1})
	}
	return rim
}

// Resize replaces the framebuffer when the dimensions change. Non-positive sizes
// collapse to an empty frame.
func (r *Rasterizer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if r.frame != nil && r.frame.Rect.Dx() == width && r.frame.Rect.Dy() == height {
		return
	}
	r.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	r.fill = vector.NewRasterizer(width, height)
	r.clear()
}

func (r *Rasterizer) Size() (int, int) { return r.frame.Rect.Dx(), r.frame.Rect.Dy() }

// Frames counts Draw calls since construction.
func (r *Rasterizer) Frames() uint64 { return r.frames }

func (r *Rasterizer) clear() {
	draw.Draw(r.frame, r.frame.Rect, image.NewUniform(ClearColor), image.Point{}, draw.Src)
}

// Draw clears the frame and renders the plan: the ground quad when requested, then
// every fence instance as a filled disc.
func (r *Rasterizer) Draw(plan fence.RenderPlan) {
	r.clear()
	r.frames++
	vp := plan.ViewProjection
	if plan.DrawGround {
		y := plan.GroundY
		quad := []mgl64.Vec4{
			{0, y, 0, 1},
			{r.groundDepth, y, 0, 1},
			{r.groundDepth, y, r.groundWidth, 1},
			{0, y, r.groundWidth, 1},
		}
		r.polygon(vp, quad, GroundColor)
	}
	for _, f := range plan.Fences {
		mvp := vp.Mul4(f.Model())
		r.polygon(mvp, r.disc, FenceColor)
	}
	if r.logger != nil {
		r.logger.Debug("render.frame",
			"frame", r.frames,
			"ground", plan.DrawGround,
			"fences", len(plan.Fences),
		)
	}
}

// polygon transforms a convex polygon to clip space, clips it and fills the rest.
func (r *Rasterizer) polygon(mvp mgl64.Mat4, verts []mgl64.Vec4, c color.RGBA) {
	w, h := r.Size()
	if w == 0 || h == 0 {
		return
	}
	clip := make([]mgl64.Vec4, len(verts))
	for i, v := range verts {
		clip[i] = mvp.Mul4x1(v)
	}
	clip = clipPolygon(clip)
	if len(clip) < 3 {
		return
	}

	r.fill.Reset(w, h)
	for i, v := range clip {
		x := (v.X()/v.W() + 1) * 0.5 * float64(w)
		y := (1 - v.Y()/v.W()) * 0.5 * float64(h)
		if i == 0 {
			r.fill.MoveTo(float32(x), float32(y))
			continue
		}
		r.fill.LineTo(float32(x), float32(y))
	}
	r.fill.ClosePath()
	r.fill.Draw(r.frame, r.frame.Rect, image.NewUniform(c), image.Point{})
}

// clipPlanes are the signed distances used for Sutherland-Hodgman clipping in
// homogeneous coordinates: near plane (z >= -w) plus a guard band on x and y.
var clipPlanes = []func(mgl64.Vec4) float64{
	func(v mgl64.Vec4) float64 { return v.Z() + v.W() },
	func(v mgl64.Vec4) float64 { return guardBand*v.W() - v.X() },
	func(v mgl64.Vec4) float64 { return guardBand*v.W() + v.X() },
	func(v mgl64.Vec4) float64 { return guardBand*v.W() - v.Y() },
	func(v mgl64.Vec4) float64 { return guardBand*v.W() + v.Y() },
}

func clipPolygon(poly []mgl64.Vec4) []mgl64.Vec4 {
	for _, dist := range clipPlanes {
		if len(poly) == 0 {
			return nil
		}
		out := make([]mgl64.Vec4, 0, len(poly)+2)
		prev := poly[len(poly)-1]
		dPrev := dist(prev)
		for _, cur := range poly {
			dCur := dist(cur)
			if (dCur >= 0) != (dPrev >= 0) {
				t := dPrev / (dPrev - dCur)
				out = append(out, prev.Add(cur.Sub(prev).Mul(t)))
			}
			if dCur >= 0 {
				out = append(out, cur)
			}
			prev, dPrev = cur, dCur
		}
		poly = out
	}
	return poly
}

// ReadRed copies the red channel of the last frame into dst, row-major from the
// top-left pixel.
func (r *Rasterizer) ReadRed(dst []byte) error {
	w, h := r.Size()
	if len(dst) < w*h {
		return fmt.Errorf("%w: have %d need %d", ErrShortBuffer, len(dst), w*h)
	}
	for y := 0; y < h; y++ {
		row := r.frame.Pix[y*r.frame.Stride:]
		out := dst[y*w : (y+1)*w]
		for x := range out {
			out[x] = row[x*4]
		}
	}
	return nil
}

// Image returns a copy of the last frame.
func (r *Rasterizer) Image() *image.RGBA {
	img := image.NewRGBA(r.frame.Rect)
	copy(img.Pix, r.frame.Pix)
	return img
}
