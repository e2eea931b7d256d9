package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const pixelTolerance = 1e-6

func scenarioParams() Params {
	return Params{Width: 1280, Height: 720, FocalLength: 800, PanDeg: 20, TiltDeg: 30, HeightM: 70}
}

func mustModel(t *testing.T, p Params) *Model {
	t.Helper()
	m, err := New(p)
	require.NoError(t, err)
	return m
}

func TestConfigure_ReadsBackInputs(t *testing.T) {
	for _, p := range []Params{
		DefaultParams(),
		scenarioParams(),
		{Width: 1, Height: 1, FocalLength: 0.5, PanDeg: -90, TiltDeg: 89, HeightM: 3},
		{Width: 1920, Height: 1080, FocalLength: 1450.25, PanDeg: 135, TiltDeg: 5, HeightM: 12.5},
	} {
		m := mustModel(t, p)
		assert.Equal(t, p.Width, m.Width())
		assert.Equal(t, p.Height, m.Height())
		assert.Equal(t, p.FocalLength, m.FocalLength())
		assert.Equal(t, p.HeightM, m.CameraHeight())
		assert.InDelta(t, p.PanDeg, m.Params().PanDeg, 1e-9)
		assert.InDelta(t, p.TiltDeg, m.Params().TiltDeg, 1e-9)
	}
}

func TestConfigure_RejectsDegenerateInputs(t *testing.T) {
	cases := map[string]Params{
		"zero focal":     {Width: 640, Height: 480, FocalLength: 0, HeightM: 10},
		"negative focal": {Width: 640, Height: 480, FocalLength: -5, HeightM: 10},
		"nan focal":      {Width: 640, Height: 480, FocalLength: math.NaN(), HeightM: 10},
		"inf focal":      {Width: 640, Height: 480, FocalLength: math.Inf(1), HeightM: 10},
		"zero width":     {Width: 0, Height: 480, FocalLength: 500, HeightM: 10},
		"zero height":    {Width: 640, Height: 0, FocalLength: 500, HeightM: 10},
		"negative size":  {Width: -640, Height: -480, FocalLength: 500, HeightM: 10},
		"nan tilt":       {Width: 640, Height: 480, FocalLength: 500, TiltDeg: math.NaN(), HeightM: 10},
		"inf height":     {Width: 640, Height: 480, FocalLength: 500, HeightM: math.Inf(-1)},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			m := mustModel(t, scenarioParams())
			before := *m
			err := m.Configure(p)
			require.ErrorIs(t, err, ErrInvalidCamera)
			assert.Equal(t, before, *m, "rejected configuration must not touch the model")

			_, err = New(p)
			require.ErrorIs(t, err, ErrInvalidCamera)
		})
	}
}

func TestConfigure_DerivedMatricesAreRigid(t *testing.T) {
	m := mustModel(t, scenarioParams())
	for name, r := range map[string]mgl64.Mat4{
		"pan":   m.PanToCamera(),
		"tilt":  m.TiltToCamera(),
		"world": m.CameraToWorld(),
		"view":  m.View(),
	} {
		// mgl64 is column-major; the determinant is transpose invariant.
		d := mat.Det(mat.NewDense(4, 4, r[:]))
		assert.Truef(t, scalar.EqualWithinAbs(d, 1, 1e-12), "%s determinant %v", name, d)
	}
}

func TestConfigure_CenterRayProjectsToPrincipalPoint(t *testing.T) {
	m := mustModel(t, scenarioParams())
	for _, depth := range []float64{2, 50, 500, 5000} {
		ahead := m.CameraToWorld().Mul4x1(mgl64.Vec4{0, 0, depth, 1}).Vec3()
		x, y, ok := m.Project(ahead)
		require.True(t, ok)
		assert.InDelta(t, 640.0, x, pixelTolerance)
		assert.InDelta(t, 360.0, y, pixelTolerance)
	}
}

func TestProject_BehindCameraRejected(t *testing.T) {
	m := mustModel(t, scenarioParams())
	behind := m.CameraToWorld().Mul4x1(mgl64.Vec4{0, 0, -10, 1}).Vec3()
	_, _, ok := m.Project(behind)
	assert.False(t, ok)
}

func TestResize_OnlyProjectionChanges(t *testing.T) {
	m := mustModel(t, scenarioParams())
	pan, tilt, world, view := m.PanToCamera(), m.TiltToCamera(), m.CameraToWorld(), m.View()
	proj := m.Projection()

	require.NoError(t, m.Resize(1920, 1080))

	assert.Equal(t, pan, m.PanToCamera())
	assert.Equal(t, tilt, m.TiltToCamera())
	assert.Equal(t, world, m.CameraToWorld())
	assert.Equal(t, view, m.View())
	assert.NotEqual(t, proj, m.Projection())
	assert.Equal(t, 1920, m.Width())
	assert.Equal(t, 1080, m.Height())
	assert.Equal(t, 800.0, m.FocalLength())
}

func TestResize_RejectsEmptyViewport(t *testing.T) {
	m := mustModel(t, scenarioParams())
	require.ErrorIs(t, m.Resize(0, 1080), ErrInvalidCamera)
	assert.Equal(t, 1280, m.Width())
}

func TestViewProjection_AppendsModelTransform(t *testing.T) {
	m := mustModel(t, scenarioParams())
	model := mgl64.Translate3D(3, 4, 5).Mul4(mgl64.Scale3D(20, 20, 20))
	want := m.Projection().Mul4(m.View()).Mul4(model)
	assert.True(t, want.ApproxEqual(m.ModelViewProjection(model)))
}
