package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestEncodePNG_Decodes(t *testing.T) {
	src := filled(7, 3, color.RGBA{127, 32, 229, 255})
	data := EncodePNG(src)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), src.Bounds())
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}

func TestScaleToFit(t *testing.T) {
	fence := color.RGBA{127, 32, 229, 255}
	src := filled(1280, 720, fence)

	small := ScaleToFit(src, 400, 400)
	if got := small.Bounds(); got.Dx() != 400 || got.Dy() != 225 {
		t.Fatalf("scaled bounds = %v, want 400x225", got)
	}
	r, g, b, _ := small.At(10, 10).RGBA()
	if uint8(r>>8) != fence.R || uint8(g>>8) != fence.G || uint8(b>>8) != fence.B {
		t.Fatalf("nearest-neighbour changed the colour: %d %d %d", r>>8, g>>8, b>>8)
	}

	if same := ScaleToFit(src, 2000, 2000); same != image.Image(src) {
		t.Fatalf("fitting image should be returned unchanged")
	}
	if ScaleToFit(nil, 10, 10) != nil {
		t.Fatalf("nil source should return nil")
	}
}

func TestToSource(t *testing.T) {
	scaled := image.Rect(0, 0, 640, 360)
	src := image.Rect(0, 0, 1280, 720)
	x, y := ToSource(image.Pt(320, 180), scaled, src)
	if x != 640 || y != 360 {
		t.Fatalf("ToSource = (%v,%v), want (640,360)", x, y)
	}
	x, y = ToSource(image.Pt(5, 6), image.Rectangle{}, src)
	if x != 5 || y != 6 {
		t.Fatalf("empty scaled rect should pass through, got (%v,%v)", x, y)
	}
}
