package capture

import (
	"image"
)

// Mask sample values.
const (
	Background byte = 0
	Covered    byte = 255
)

// Binarize rewrites a rendered single-channel buffer in place: 255 (clear color)
// becomes Background, any other nonzero sample becomes Covered and 0 stays 0.
//
// Applying it to its own output inverts the mask, so each rendered frame must be
// binarized exactly once.
func Binarize(buf []byte) {
	for i, v := range buf {
		switch v {
		case 255:
			buf[i] = Background
		case 0:
		default:
			buf[i] = Covered
		}
	}
}

// CountCovered returns the number of samples equal to Covered.
func CountCovered(buf []byte) int {
	n := 0
	for _, v := range buf {
		if v == Covered {
			n++
		}
	}
	return n
}

// MaskBuffer owns the occupancy mask storage. The backing slice is replaced, never
// resized in place, whenever the resolution changes so no stale reference can be
// written past its bounds. The zero value holds no storage.
type MaskBuffer struct {
	width, height int
	pix           []byte
	reallocs      uint64
}

// NewMaskBuffer allocates a buffer for a width x height frame.
func NewMaskBuffer(width, height int) *MaskBuffer {
	b := &MaskBuffer{}
	b.Ensure(width, height)
	return b
}

// Ensure reallocates the storage when the dimensions differ from the current ones.
// It reports whether a new slice was allocated.
func (b *MaskBuffer) Ensure(width, height int) bool {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if b.pix != nil && width == b.width && height == b.height {
		return false
	}
	b.pix = nil
	b.width, b.height = width, height
	b.pix = make([]byte, width*height)
	b.reallocs++
	return true
}

func (b *MaskBuffer) Width() int  { return b.width }
func (b *MaskBuffer) Height() int { return b.height }

// Pix returns the live storage. Callers must not retain it across Ensure.
func (b *MaskBuffer) Pix() []byte { return b.pix }

// Reallocations counts allocations made by Ensure.
func (b *MaskBuffer) Reallocations() uint64 { return b.reallocs }

// Image returns a copy of the mask as a grayscale image.
func (b *MaskBuffer) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}
