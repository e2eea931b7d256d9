package render

import (
	"image"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/domain/capture"
	"github.com/soocke/virtual-fence-go/domain/fence"
)

const (
	groundWidth = 320.0
	groundDepth = 240.0
)

var discardLogger = slog.New(slog.DiscardHandler)

func scene(t *testing.T) (*camera.Model, *fence.Machine, *Rasterizer) {
	t.Helper()
	p := camera.DefaultParams()
	p.PanDeg, p.TiltDeg = 20, 30
	cam, err := camera.New(p)
	require.NoError(t, err)
	m := fence.NewMachine(discardLogger, cam, groundDepth, fence.Params{Height: 20, Radius: 20}, fence.Collaborators{})
	return cam, m, New(discardLogger, p.Width, p.Height, groundWidth, groundDepth)
}

func TestDraw_EmptyPlanClearsToWhite(t *testing.T) {
	r := New(nil, 8, 6, groundWidth, groundDepth)
	r.Draw(fence.RenderPlan{})
	red := make([]byte, 48)
	require.NoError(t, r.ReadRed(red))
	for i, v := range red {
		require.Equalf(t, byte(255), v, "sample %d", i)
	}
	assert.Equal(t, uint64(1), r.Frames())
}

func TestDraw_GroundUnderOpticalAxis(t *testing.T) {
	_, m, r := scene(t)
	plan := m.Plan()
	require.True(t, plan.DrawGround)
	require.False(t, plan.HasFence())
	r.Draw(plan)
	img := r.Image()
	assert.Equal(t, GroundColor, img.RGBAAt(640, 360))
	assert.Equal(t, ClearColor, img.RGBAAt(0, 0), "rays left of the quad miss the ground")
}

func TestDraw_GroundOnlyFrameHasOnlyFencePixels(t *testing.T) {
	cam, m, r := scene(t)
	require.NoError(t, m.Handle(fence.EventClick{X: 640, Y: 360}))
	require.NoError(t, m.Handle(fence.EventKey{Key: fence.KeyToggleGroundOnly}))
	plan := m.Plan()
	require.False(t, plan.DrawGround)
	require.Len(t, plan.Fences, 1)
	r.Draw(plan)

	img := r.Image()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			require.NotEqualf(t, GroundColor, c, "pixel (%d,%d)", x, y)
			if c.R == 255 {
				require.GreaterOrEqualf(t, c.G, uint8(250), "pixel (%d,%d) = %v", x, y, c)
			}
		}
	}

	px, py, ok := cam.Project(plan.Fences[0].Center)
	require.True(t, ok)
	assert.Equal(t, FenceColor, img.RGBAAt(int(px), int(py)))

	red := make([]byte, 1280*720)
	require.NoError(t, r.ReadRed(red))
	capture.Binarize(red)
	assert.Positive(t, capture.CountCovered(red))
}

func TestDraw_FenceAndGroundInstances(t *testing.T) {
	cam, m, r := scene(t)
	require.NoError(t, m.Handle(fence.EventClick{X: 640, Y: 360}))
	plan := m.Plan()
	require.Len(t, plan.Fences, 2)
	r.Draw(plan)
	img := r.Image()

	// The elevated disc is centred on the clicked pixel.
	assert.Equal(t, FenceColor, img.RGBAAt(640, 360))
	px, py, ok := cam.Project(plan.Fences[1].Center)
	require.True(t, ok)
	assert.Equal(t, FenceColor, img.RGBAAt(int(px), int(py)))
}

func TestReadRed_ShortBuffer(t *testing.T) {
	r := New(nil, 4, 4, groundWidth, groundDepth)
	err := r.ReadRed(make([]byte, 15))
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestResize_ReplacesFrame(t *testing.T) {
	r := New(nil, 4, 4, groundWidth, groundDepth)
	r.Resize(6, 2)
	w, h := r.Size()
	assert.Equal(t, 6, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, image.Rect(0, 0, 6, 2), r.Image().Bounds())

	r.Resize(-1, 3)
	w, h = r.Size()
	assert.Zero(t, w)
	assert.Equal(t, 3, h)
	r.Draw(fence.RenderPlan{DrawGround: true})
	require.NoError(t, r.ReadRed(nil))
}

func TestClipPolygon(t *testing.T) {
	behind := []mgl64.Vec4{{0, 0, -5, 1}, {1, 0, -5, 1}, {1, 1, -5, 1}}
	assert.Empty(t, clipPolygon(behind))

	straddle := []mgl64.Vec4{{0, 0, -3, 1}, {0.5, 0, 0, 1}, {0, 0.5, 0, 1}}
	out := clipPolygon(straddle)
	require.GreaterOrEqual(t, len(out), 3)
	for _, v := range out {
		assert.GreaterOrEqual(t, v.Z()+v.W(), -1e-9)
	}

	inside := []mgl64.Vec4{{-0.5, -0.5, 0, 1}, {0.5, -0.5, 0, 1}, {0, 0.5, 0, 1}}
	assert.Equal(t, inside, clipPolygon(inside))
}

func TestUnitDisc(t *testing.T) {
	rim := unitDisc(DiscStepDeg)
	require.Len(t, rim, 72)
	for _, v := range rim {
		assert.InDelta(t, 1, math.Hypot(v.X(), v.Z()), 1e-12)
		assert.Zero(t, v.Y())
	}
}
