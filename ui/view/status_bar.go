package view

import (
	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusBar shows the one-line session status.
type StatusBar interface {
	SetStatus(text string)
}

type statusBar struct{ lbl *LabelWidget }

// NewStatusBar places the status label at row spanning all columns.
func NewStatusBar(row int) StatusBar {
	s := &statusBar{lbl: Label(Txt("Session: 00:00"), Anchor("w"))}
	Grid(s.lbl, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	return s
}

func (s *statusBar) SetStatus(text string) {
	if s == nil || s.lbl == nil {
		return
	}
	s.lbl.Configure(Txt(text))
}
