package field

import (
	"math"

	"github.com/lixenwraith/starfield/palette"
)

// Canvas is the drawing subset the field needs from a render surface
type Canvas interface {
	FillCircle(x, y, r float64, c palette.RGB, alpha float64)
	StrokeLine(x0, y0, x1, y1, width float64, c palette.RGB, alpha float64)
}

// debugMarkerRadius is the particle radius used while debug drawing is on
const debugMarkerRadius = 16

// Draw renders particles then edges, rotated about the center when rotation is enabled
func (f *Field) Draw(c Canvas) {
	cfg := f.cfg
	cx, cy := f.Center()

	sin, cos := 0.0, 1.0
	if cfg.RotationEnabled {
		sin, cos = math.Sincos(f.rotation * math.Pi / 180)
	}
	xf := func(x, y float64) (float64, float64) {
		dx, dy := x-cx, y-cy
		return cx + dx*cos - dy*sin, cy + dx*sin + dy*cos
	}

	if cfg.DrawDebug {
		// Spawn radius marker pointing up from the center
		x, y := xf(cx, cy-f.spawnRadius)
		c.StrokeLine(cx, cy, x, y, 1, palette.RGBRed, 1)
	}

	for _, p := range f.particles {
		x, y := xf(p.X, p.Y)
		if cfg.DrawDebug {
			col := palette.RGBRed
			if p.Alpha >= 1 {
				col = palette.RGB{G: 128}
			}
			c.FillCircle(x, y, debugMarkerRadius, col, 1)
			continue
		}
		c.FillCircle(x, y, cfg.StarRadius, p.Color, p.Alpha)
	}

	for _, e := range f.edges {
		if e.Alpha <= 0 {
			continue
		}
		x0, y0 := xf(e.X0, e.Y0)
		x1, y1 := xf(e.X1, e.Y1)
		col := e.Color
		if cfg.DrawDebug {
			col = palette.RGBYellow
		}
		c.StrokeLine(x0, y0, x1, y1, cfg.LineWidth, col, e.Alpha)
	}
}
