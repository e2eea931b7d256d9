package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}

// ScaleToFit scales src so it fits within maxW x maxH preserving aspect ratio. If the
// source already fits, the original is returned. Nearest-neighbour keeps the fence
// and mask colours exact.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, max(maxW, 1), max(maxH, 1), imaging.NearestNeighbor)
}

// ToSource maps a point on an image scaled from src back to src coordinates.
func ToSource(p image.Point, scaled, src image.Rectangle) (x, y float64) {
	if scaled.Dx() == 0 || scaled.Dy() == 0 {
		return float64(p.X), float64(p.Y)
	}
	x = float64(p.X-scaled.Min.X) * float64(src.Dx()) / float64(scaled.Dx())
	y = float64(p.Y-scaled.Min.Y) * float64(src.Dy()) / float64(scaled.Dy())
	return x + float64(src.Min.X), y + float64(src.Min.Y)
}
