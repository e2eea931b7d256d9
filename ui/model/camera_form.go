package model

import (
	"fmt"
	"strconv"

	"github.com/soocke/virtual-fence-go/domain/camera"
)

// CameraField is one editable camera value. Format renders it so that Parse of the
// same text gives the value back exactly.
type CameraField struct {
	ID, Label string
	Format    func(camera.Params) string
	Parse     func(*camera.Params, string) error
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func floatField(id, label string, ptr func(*camera.Params) *float64) CameraField {
	return CameraField{
		ID:     id,
		Label:  label,
		Format: func(p camera.Params) string { return formatFloat(*ptr(&p)) },
		Parse: func(p *camera.Params, s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*ptr(p) = v
			return nil
		},
	}
}

func intField(id, label string, ptr func(*camera.Params) *int) CameraField {
	return CameraField{
		ID:     id,
		Label:  label,
		Format: func(p camera.Params) string { return strconv.Itoa(*ptr(&p)) },
		Parse: func(p *camera.Params, s string) error {
			v, err := strconv.Atoi(s)
			if err != nil {
				return err
			}
			*ptr(p) = v
			return nil
		},
	}
}

// CameraFields lists the camera form in display order.
var CameraFields = []CameraField{
	intField("width", "Width (px)", func(p *camera.Params) *int { return &p.Width }),
	intField("height", "Height (px)", func(p *camera.Params) *int { return &p.Height }),
	floatField("focal", "Focal Length (px)", func(p *camera.Params) *float64 { return &p.FocalLength }),
	floatField("pan", "Pan (deg)", func(p *camera.Params) *float64 { return &p.PanDeg }),
	floatField("tilt", "Tilt (deg)", func(p *camera.Params) *float64 { return &p.TiltDeg }),
	floatField("heightM", "Camera Height", func(p *camera.Params) *float64 { return &p.HeightM }),
}

// FormatCamera renders p keyed by field ID.
func FormatCamera(p camera.Params) map[string]string {
	out := make(map[string]string, len(CameraFields))
	for _, f := range CameraFields {
		out[f.ID] = f.Format(p)
	}
	return out
}

// ParseCamera overlays the form values on base. An empty or missing field keeps the
// base value; an unparsable one is an error and base is returned unchanged.
func ParseCamera(base camera.Params, values map[string]string) (camera.Params, error) {
	p := base
	for _, f := range CameraFields {
		s, ok := values[f.ID]
		if !ok || s == "" {
			continue
		}
		if err := f.Parse(&p, s); err != nil {
			return base, fmt.Errorf("%s: %w", f.Label, err)
		}
	}
	return p, nil
}
