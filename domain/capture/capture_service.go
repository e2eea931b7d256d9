package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyFrame is returned when the frame reader reports a zero-sized frame.
var ErrEmptyFrame = errors.New("capture: empty frame")

// CaptureService turns rendered frames into binarized fence masks. It owns the mask
// buffer and is driven synchronously from the UI thread. Use NewCaptureService to
// construct an instance.
type CaptureService interface {
	Capture(r FrameReader) (MaskSnapshot, error)
	Resize(width, height int)
	Latest() MaskSnapshot
	Stats() CaptureStats
}

type captureService struct {
	buf          *MaskBuffer
	logger       *slog.Logger
	latest       MaskSnapshot
	captures     uint64
	failed       uint64
	captureNanos uint64
	sequence     uint64
	now          func() time.Time
}

func newCaptureService(logger *slog.Logger, width, height int) *captureService {
	return &captureService{buf: NewMaskBuffer(width, height), logger: logger, now: time.Now}
}

// NewCaptureService constructs a capture service with a mask sized width x height.
func NewCaptureService(logger *slog.Logger, width, height int) CaptureService {
	return newCaptureService(logger, width, height)
}

// Resize reallocates the mask for a new resolution.
func (s *captureService) Resize(width, height int) {
	if s.buf.Ensure(width, height) && s.logger != nil {
		s.logger.Debug("capture.realloc", "width", width, "height", height)
	}
}

func (s *captureService) Latest() MaskSnapshot { return s.latest }

func (s *captureService) Stats() CaptureStats {
	var avg time.Duration
	if s.captures > 0 {
		avg = time.Duration(s.captureNanos / s.captures)
	}
	return CaptureStats{
		Captures:      s.captures,
		Failed:        s.failed,
		Reallocations: s.buf.Reallocations(),
		AvgCapture:    avg,
		LastCapture:   s.latest.CapturedAt,
		LastCoverage:  s.latest.Coverage,
		Sequence:      s.latest.Sequence,
	}
}

// Capture reads the red channel of the rendered frame, binarizes it once and
// publishes the result as the latest snapshot.
func (s *captureService) Capture(r FrameReader) (MaskSnapshot, error) {
	start := time.Now()
	w, h := r.Size()
	if w <= 0 || h <= 0 {
		s.failed++
		return MaskSnapshot{}, ErrEmptyFrame
	}
	s.Resize(w, h)
	if err := r.ReadRed(s.buf.Pix()); err != nil {
		s.failed++
		return MaskSnapshot{}, fmt.Errorf("read frame: %w", err)
	}
	Binarize(s.buf.Pix())

	covered := CountCovered(s.buf.Pix())
	s.sequence++
	snap := MaskSnapshot{
		ID:         uuid.New(),
		Mask:       s.buf.Image(),
		Covered:    covered,
		Coverage:   float64(covered) / float64(w*h),
		CapturedAt: s.now(),
		Sequence:   s.sequence,
	}
	s.latest = snap
	s.captures++
	s.captureNanos += uint64(time.Since(start).Nanoseconds())
	s.logStats()
	return snap, nil
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failed", stats.Failed,
		"reallocations", stats.Reallocations,
		"avg_capture", stats.AvgCapture,
		"coverage", stats.LastCoverage,
	)
}
