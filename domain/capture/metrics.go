package capture

import (
	"time"
)

// CaptureStats summarises capture behaviour for instrumentation.
type CaptureStats struct {
	Captures      uint64
	Failed        uint64
	Reallocations uint64
	AvgCapture    time.Duration
	LastCapture   time.Time
	LastCoverage  float64
	Sequence      uint64
}
