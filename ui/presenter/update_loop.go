package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Fence    *FencePresenter
	Status   *StatusPresenter
	Schedule func()
}

func NewLoop(fence *FencePresenter, status *StatusPresenter, schedule func()) *Loop {
	return &Loop{Fence: fence, Status: status, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Fence != nil {
		l.Fence.Tick(now)
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
