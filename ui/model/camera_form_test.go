package model

import (
	"strings"
	"testing"

	"github.com/soocke/virtual-fence-go/domain/camera"
)

func TestCameraForm_RoundTripsExactly(t *testing.T) {
	p := camera.Params{Width: 1920, Height: 1080, FocalLength: 1450.25, PanDeg: 20.125, TiltDeg: 33.3333333, HeightM: 0.1 + 0.2}
	got, err := ParseCamera(camera.Params{}, FormatCamera(p))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != p {
		t.Fatalf("round trip = %+v, want %+v", got, p)
	}
}

func TestCameraForm_EditOneFieldKeepsOthers(t *testing.T) {
	p := camera.Params{Width: 1280, Height: 720, FocalLength: 1450.25, PanDeg: 20, TiltDeg: 30, HeightM: 70}
	values := FormatCamera(p)
	values["tilt"] = "45"
	got, err := ParseCamera(p, values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := p
	want.TiltDeg = 45
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseCamera_EmptyKeepsBaseAndBadValueFails(t *testing.T) {
	base := camera.DefaultParams()
	got, err := ParseCamera(base, map[string]string{"width": "", "pan": "12.5"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Width != base.Width || got.PanDeg != 12.5 {
		t.Fatalf("got %+v", got)
	}

	got, err = ParseCamera(base, map[string]string{"focal": "wide"})
	if err == nil || !strings.Contains(err.Error(), "Focal Length") {
		t.Fatalf("err = %v, want focal length error", err)
	}
	if got != base {
		t.Fatalf("failed parse should return base, got %+v", got)
	}
}
