package model

import (
	"time"
)

// StatusModel accumulates what the status bar shows: session uptime, capture
// counters, the capture log size and the outcome of the last capture. It is decoupled from the UI;
// presenters should poll Values() and update views. The zero value is ready to use.
type StatusModel struct {
	started      time.Time
	uptime       time.Duration
	captures     int
	failures     int
	lastCoverage float64
	lastPath     string
	lastErr      error
	logged       int
	lastLogged   time.Time
}

// StatusValues is a snapshot of the model.
type StatusValues struct {
	Uptime       time.Duration
	Captures     int
	Failures     int
	LastCoverage float64
	LastPath     string
	LastErr      error
	Logged       int
	LastLogged   time.Time
}

// NewStatusModel returns a pointer to a ready-to-use StatusModel.
func NewStatusModel() *StatusModel { return &StatusModel{} }

// OnTick advances the uptime. The first tick starts the clock.
func (m *StatusModel) OnTick(now time.Time) {
	if m == nil {
		return
	}
	if m.started.IsZero() {
		m.started = now
	}
	m.uptime = now.Sub(m.started)
}

// OnCapture records a saved mask.
func (m *StatusModel) OnCapture(path string, coverage float64) {
	if m == nil {
		return
	}
	m.captures++
	m.lastPath = path
	m.lastCoverage = coverage
	m.lastErr = nil
}

// OnHistory seeds the capture log counters from the store. last is zero when
// the log is empty.
func (m *StatusModel) OnHistory(count int, last time.Time) {
	if m == nil {
		return
	}
	m.logged = count
	m.lastLogged = last
}

// OnLogged counts one capture written to the log.
func (m *StatusModel) OnLogged(at time.Time) {
	if m == nil {
		return
	}
	m.logged++
	if at.After(m.lastLogged) {
		m.lastLogged = at
	}
}

// OnFailure records a failed capture.
func (m *StatusModel) OnFailure(err error) {
	if m == nil {
		return
	}
	m.failures++
	m.lastErr = err
}

func (m *StatusModel) Values() StatusValues {
	if m == nil {
		return StatusValues{}
	}
	return StatusValues{
		Uptime:       m.uptime,
		Captures:     m.captures,
		Failures:     m.failures,
		LastCoverage: m.lastCoverage,
		LastPath:     m.lastPath,
		LastErr:      m.lastErr,
		Logged:       m.logged,
		LastLogged:   m.lastLogged,
	}
}
