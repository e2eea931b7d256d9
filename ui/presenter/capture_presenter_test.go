package presenter

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/soocke/virtual-fence-go/domain/capture"
	"github.com/soocke/virtual-fence-go/domain/fence"
	"github.com/soocke/virtual-fence-go/domain/session"
	"github.com/soocke/virtual-fence-go/storage"
	"github.com/soocke/virtual-fence-go/ui/model"
)

type mockSaver struct {
	paths []string
	err   error
}

func (s *mockSaver) Save(path string, _ *image.Gray) error {
	s.paths = append(s.paths, path)
	return s.err
}

type mockRecorder struct {
	recs    []storage.CaptureRecord
	err     error
	history []storage.CaptureRecord
	listErr error
}

func (r *mockRecorder) Record(_ context.Context, rec storage.CaptureRecord) error {
	r.recs = append(r.recs, rec)
	return r.err
}

func (r *mockRecorder) Count(context.Context) (int, error) {
	return len(r.history), r.listErr
}

func (r *mockRecorder) List(_ context.Context, limit int) ([]storage.CaptureRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	if limit > 0 && limit < len(r.history) {
		return r.history[:limit], nil
	}
	return r.history, nil
}

type mockMaskView struct{ masks int }

func (v *mockMaskView) SetMask([]byte) { v.masks++ }

func testResult() session.Result {
	return session.Result{
		Snapshot: capture.MaskSnapshot{
			ID:         uuid.New(),
			Mask:       image.NewGray(image.Rect(0, 0, 1280, 720)),
			Covered:    921,
			Coverage:   0.001,
			CapturedAt: time.Unix(100, 0),
			Sequence:   1,
		},
		State: fence.State{
			Clicked:    image.Pt(640, 360),
			ClickedSet: true,
			Params:     fence.Params{Height: 20, Radius: 25, GroundOnly: true},
		},
		World:   mgl64.Vec3{41, 70, 114},
		WorldOK: true,
	}
}

func TestCapturePresenter_SavesRecordsAndShows(t *testing.T) {
	saver := &mockSaver{}
	rec := &mockRecorder{}
	view := &mockMaskView{}
	status := model.NewStatusModel()
	p := NewCapturePresenter("/data/fence_mask.png", saver.Save, rec, status, view, nil)

	res := testResult()
	if err := p.OnCapture(res); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(saver.paths) != 1 || saver.paths[0] != "/data/fence_mask.png" {
		t.Fatalf("saved paths = %v", saver.paths)
	}
	if len(rec.recs) != 1 {
		t.Fatalf("records = %d, want 1", len(rec.recs))
	}
	got := rec.recs[0]
	if got.ID != res.Snapshot.ID || got.Width != 1280 || got.Height != 720 || got.ClickX != 640 || got.FenceRadius != 25 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.World == nil || got.World[1] != 70 {
		t.Fatalf("world point not recorded: %v", got.World)
	}
	if view.masks != 1 {
		t.Fatalf("mask thumbnail not shown")
	}
	if v := status.Values(); v.Captures != 1 || v.LastPath != "/data/fence_mask.png" || v.Logged != 1 {
		t.Fatalf("status not updated: %+v", v)
	}
	if v := status.Values(); !v.LastLogged.Equal(res.Snapshot.CapturedAt) {
		t.Fatalf("last logged = %v, want %v", v.LastLogged, res.Snapshot.CapturedAt)
	}
}

func TestCapturePresenter_LoadHistorySeedsStatus(t *testing.T) {
	newest := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rec := &mockRecorder{history: []storage.CaptureRecord{
		{ID: uuid.New(), CapturedAt: newest},
		{ID: uuid.New(), CapturedAt: newest.Add(-time.Hour)},
		{ID: uuid.New(), CapturedAt: newest.Add(-2 * time.Hour)},
	}}
	status := model.NewStatusModel()
	p := NewCapturePresenter("x.png", (&mockSaver{}).Save, rec, status, nil, nil)
	if err := p.LoadHistory(context.Background()); err != nil {
		t.Fatalf("load history: %v", err)
	}
	v := status.Values()
	if v.Logged != 3 || !v.LastLogged.Equal(newest) {
		t.Fatalf("history not seeded: %+v", v)
	}

	if err := p.OnCapture(testResult()); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got := status.Values().Logged; got != 4 {
		t.Fatalf("logged = %d, want 4", got)
	}
}

func TestCapturePresenter_LoadHistoryErrors(t *testing.T) {
	boom := errors.New("no such table")
	status := model.NewStatusModel()
	p := NewCapturePresenter("x.png", nil, &mockRecorder{listErr: boom}, status, nil, nil)
	if err := p.LoadHistory(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if v := status.Values(); v.Logged != 0 {
		t.Fatalf("failed load should leave status empty: %+v", v)
	}

	empty := NewCapturePresenter("x.png", nil, &mockRecorder{}, status, nil, nil)
	if err := empty.LoadHistory(context.Background()); err != nil {
		t.Fatalf("empty log: %v", err)
	}
	if v := status.Values(); v.Logged != 0 || !v.LastLogged.IsZero() {
		t.Fatalf("empty log should report nothing: %+v", v)
	}

	var storeless *CapturePresenter
	if err := storeless.LoadHistory(context.Background()); err != nil {
		t.Fatalf("nil presenter: %v", err)
	}
}

func TestCapturePresenter_SaveErrorStopsFlow(t *testing.T) {
	saver := &mockSaver{err: errors.New("read-only")}
	rec := &mockRecorder{}
	p := NewCapturePresenter("x.png", saver.Save, rec, model.NewStatusModel(), &mockMaskView{}, nil)
	err := p.OnCapture(testResult())
	if !errors.Is(err, saver.err) {
		t.Fatalf("err = %v, want wrapped %v", err, saver.err)
	}
	if len(rec.recs) != 0 {
		t.Fatalf("nothing should be recorded when the save fails")
	}
}

func TestCapturePresenter_RecordErrorIsNotFatal(t *testing.T) {
	rec := &mockRecorder{err: errors.New("db locked")}
	view := &mockMaskView{}
	p := NewCapturePresenter("x.png", (&mockSaver{}).Save, rec, nil, view, nil)
	res := testResult()
	res.WorldOK = false
	if err := p.OnCapture(res); err != nil {
		t.Fatalf("record failure should not fail the capture: %v", err)
	}
	if v := p.status.Values(); v.Logged != 0 {
		t.Fatalf("failed record should not count as logged")
	}
	if rec.recs[0].World != nil {
		t.Fatalf("unresolved world point should be nil")
	}
	if view.masks != 1 {
		t.Fatalf("thumbnail should still be shown")
	}
}

func TestFormatStatus(t *testing.T) {
	text := FormatStatus(model.StatusValues{
		Uptime:       75 * time.Second,
		Captures:     1234,
		Failures:     1,
		LastCoverage: 0.1234,
		LastPath:     "/data/fence_mask.png",
		LastErr:      errors.New("boom"),
		Logged:       2048,
		LastLogged:   time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local),
	})
	for _, want := range []string{"Session: 01:15", "Captures: 1,234", "Failed: 1", "12.34% in fence_mask.png", "Log: 2,048 (last 2026-03-01 12:30)", "Error: boom"} {
		if !strings.Contains(text, want) {
			t.Fatalf("status %q missing %q", text, want)
		}
	}
}

type mockStatusView struct{ calls int }

func (v *mockStatusView) SetStatus(string) { v.calls++ }

func TestStatusPresenter_PushesOnlyChanges(t *testing.T) {
	status := model.NewStatusModel()
	view := &mockStatusView{}
	p := NewStatusPresenter(status, view)
	base := time.Unix(0, 0)
	p.Tick(base)
	p.Tick(base.Add(100 * time.Millisecond))
	if view.calls != 1 {
		t.Fatalf("same text should not be pushed twice, calls=%d", view.calls)
	}
	p.Tick(base.Add(2 * time.Second))
	if view.calls != 2 {
		t.Fatalf("calls=%d, want 2", view.calls)
	}
}
