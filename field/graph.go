package field

import (
	"math"

	"github.com/lixenwraith/starfield/palette"
	"github.com/lixenwraith/starfield/parameter"
)

// Edge is one drawn connection between a connection particle and a neighbor
type Edge struct {
	X0, Y0 float64
	X1, Y1 float64
	Alpha  float64
	Color  palette.RGB
}

// EffectiveRadius is the reach of connection particle p this frame
// Particles far from center get a larger reach to offset the warp spread
func (f *Field) EffectiveRadius(p *Particle) float64 {
	cx, cy := f.Center()
	extra := max(math.Abs(cx-p.X), math.Abs(cy-p.Y)) / parameter.RadiusPerspectiveDivisor
	return p.ConnectionRadius * max(1, extra) * f.radiusActual
}

// computeEdges scans every particle for each connection particle, O(C*N) per frame
func (f *Field) computeEdges(lag float64) {
	f.edges = f.edges[:0]
	r := f.cfg.StarRadius
	step := f.cfg.OpacityStep * lag

	for _, p := range f.connections {
		radius := f.EffectiveRadius(p)
		if radius <= 0 {
			continue
		}

		for _, q := range f.particles {
			if q == p {
				continue
			}
			// Bounding box reject before the square root
			if q.X >= p.X+radius || q.X <= p.X-radius || q.Y <= p.Y-radius || q.Y >= p.Y+radius {
				continue
			}

			dx := p.X - q.X
			dy := p.Y - q.Y
			dt := math.Sqrt(dx*dx + dy*dy)
			if dt >= radius+r {
				continue
			}

			p.ConnectionOpacity = min(1, p.ConnectionOpacity+step)

			a := min(q.Alpha, p.Alpha, 1-dt/radius, p.ConnectionOpacity)
			f.edges = append(f.edges, Edge{
				X0:    p.X,
				Y0:    p.Y,
				X1:    q.X,
				Y1:    q.Y,
				Alpha: max(0, a),
				Color: p.Color,
			})
		}
	}
	f.stats.Lines = len(f.edges)
}
