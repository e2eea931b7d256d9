package capture

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// FrameReader is the rasterizer side of a capture: it copies the red channel of the
// last rendered frame, row-major with the origin at the top-left, into dst.
type FrameReader interface {
	Size() (width, height int)
	ReadRed(dst []byte) error
}

// MaskSnapshot describes the most recent binarized mask.
type MaskSnapshot struct {
	ID         uuid.UUID
	Mask       *image.Gray
	Covered    int     // samples equal to 255
	Coverage   float64 // Covered / (width*height)
	CapturedAt time.Time
	Sequence   uint64
}

// Empty reports whether no capture has happened yet.
func (s MaskSnapshot) Empty() bool { return s.Mask == nil }
