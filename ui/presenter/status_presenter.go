package presenter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/virtual-fence-go/ui/model"
)

// StatusView displays the formatted status line.
type StatusView interface {
	SetStatus(text string)
}

// StatusPresenter formats the status model for the view.
type StatusPresenter struct {
	status *model.StatusModel
	view   StatusView
	last   string
}

// NewStatusPresenter returns a new StatusPresenter.
func NewStatusPresenter(status *model.StatusModel, view StatusView) *StatusPresenter {
	return &StatusPresenter{status: status, view: view}
}

// Tick advances the model and pushes the text when it changed.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.status == nil || p.view == nil {
		return
	}
	p.status.OnTick(now)
	text := FormatStatus(p.status.Values())
	if text == p.last {
		return
	}
	p.last = text
	p.view.SetStatus(text)
}

const historyTimeLayout = "2006-01-02 15:04"

// FormatStatus renders the status line.
func FormatStatus(v model.StatusValues) string {
	seconds := int(v.Uptime.Seconds())
	parts := []string{
		fmt.Sprintf("Session: %02d:%02d", seconds/60, seconds%60),
		"Captures: " + humanize.Comma(int64(v.Captures)),
	}
	if v.Failures > 0 {
		parts = append(parts, "Failed: "+humanize.Comma(int64(v.Failures)))
	}
	if v.LastPath != "" {
		parts = append(parts, fmt.Sprintf("Last: %s%% in %s",
			humanize.FtoaWithDigits(v.LastCoverage*100, 2), filepath.Base(v.LastPath)))
	}
	if v.Logged > 0 {
		logged := "Log: " + humanize.Comma(int64(v.Logged))
		if !v.LastLogged.IsZero() {
			logged += " (last " + v.LastLogged.Local().Format(historyTimeLayout) + ")"
		}
		parts = append(parts, logged)
	}
	if v.LastErr != nil {
		parts = append(parts, "Error: "+v.LastErr.Error())
	}
	return strings.Join(parts, "  |  ")
}
