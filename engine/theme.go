package engine

import (
	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/palette"
	"github.com/lixenwraith/starfield/parameter"
)

// Theme is a background with the star and line sizes that read well on it
type Theme struct {
	Name       string
	Background palette.RGB
	Overlay    palette.RGB
	StarRadius float64
	LineWidth  float64
}

// DarkTheme keeps whatever sizes the settings hold
func DarkTheme(sim *config.Simulation) Theme {
	return Theme{
		Name:       "dark",
		Background: palette.RGBBlack,
		Overlay:    palette.RGBWhite,
		StarRadius: sim.StarRadius,
		LineWidth:  sim.LineWidth,
	}
}

// LightTheme uses thicker strokes that stay visible on a pale background
func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Background: palette.RGBLightBg,
		Overlay:    palette.RGBBlack,
		StarRadius: parameter.StarRadiusLight,
		LineWidth:  parameter.LineWidthLight,
	}
}
