package view

import (
	"log/slog"
	"strings"

	"github.com/soocke/virtual-fence-go/config"
	"github.com/soocke/virtual-fence-go/domain/camera"
	"github.com/soocke/virtual-fence-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CameraPanel is the camera form. Apply replaces the whole camera through the
// configure callback and persists the result.
type CameraPanel interface {
	Build(startRow int, current camera.Params) (endRow int)
	Show(p camera.Params)
	ApplyChanges()
}

type cameraPanel struct {
	cfg         *config.Config
	cfgPath     string
	logger      *slog.Logger
	configure   func(camera.Params) error
	matchWindow func() (camera.Params, error)
	widgets     map[string]*TextWidget
	errLabel    *LabelWidget
	current     camera.Params
}

// NewCameraPanel binds the form to configure; matchWindow resizes the camera to the
// preview box and returns the resulting parameters.
func NewCameraPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, configure func(camera.Params) error, matchWindow func() (camera.Params, error)) CameraPanel {
	return &cameraPanel{
		cfg:         cfg,
		cfgPath:     cfgPath,
		logger:      logger,
		configure:   configure,
		matchWindow: matchWindow,
		widgets:     make(map[string]*TextWidget),
	}
}

func (v *cameraPanel) Build(startRow int, current camera.Params) (row int) {
	row = startRow
	for _, f := range model.CameraFields {
		lbl := Label(Txt(f.Label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(12))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		v.widgets[f.ID] = w
		row++
	}
	apply := Button(Txt("Set Camera"), Command(func() { v.ApplyChanges() }))
	Grid(apply, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	match := Button(Txt("Match Window"), Command(func() { v.match() }))
	Grid(match, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	v.errLabel = Label(Txt(""), Anchor("w"), Foreground("#dc2626"))
	Grid(v.errLabel, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"))
	row++
	v.Show(current)
	return row
}

// Show writes p into the form.
func (v *cameraPanel) Show(p camera.Params) {
	v.current = p
	for _, f := range model.CameraFields {
		w := v.widgets[f.ID]
		if w == nil {
			continue
		}
		w.Delete("1.0", END)
		w.Insert("1.0", f.Format(p))
	}
}

func (v *cameraPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

func (v *cameraPanel) setError(err error) {
	if v.errLabel == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	v.errLabel.Configure(Txt(msg))
}

func (v *cameraPanel) ApplyChanges() {
	values := make(map[string]string, len(v.widgets))
	for id, w := range v.widgets {
		values[id] = v.text(w)
	}
	p, err := model.ParseCamera(v.current, values)
	if err == nil && v.configure != nil {
		err = v.configure(p)
	}
	v.setError(err)
	if err != nil {
		if v.logger != nil {
			v.logger.Warn("camera rejected", "error", err)
		}
		return
	}
	v.current = p
	v.persist(p)
}

func (v *cameraPanel) match() {
	if v.matchWindow == nil {
		return
	}
	p, err := v.matchWindow()
	v.setError(err)
	if err != nil {
		return
	}
	v.Show(p)
	v.persist(p)
}

func (v *cameraPanel) persist(p camera.Params) {
	if v.cfg == nil || v.cfgPath == "" {
		return
	}
	v.cfg.Camera = p
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
}
