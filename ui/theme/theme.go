package theme

// Styling for the fence UI. Colours follow the rendered scene so the
// controls read as part of it.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff"
	ColorFence     = "#7f20e5" // rendered fence colour
	ColorGround    = "#00ff00" // rendered ground colour
	ColorDanger    = "#dc2626"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
)

// InitStyles activates the base theme and configures the named styles.
func InitStyles() {
	_ = ActivateTheme("azure light")
	App.Configure(Background(ColorBg))

	StyleConfigure(StylePrimaryButton,
		Background(ColorFence),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(ColorDanger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground(ColorText),
		Background(ColorSurface),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
