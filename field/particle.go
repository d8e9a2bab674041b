package field

import (
	"github.com/lixenwraith/starfield/palette"
)

// Kind is fixed at creation, a particle is never promoted or demoted
type Kind uint8

const (
	KindPlain Kind = iota
	KindConnection
)

func (k Kind) String() string {
	if k == KindConnection {
		return "connection"
	}
	return "plain"
}

// Particle is one moving point of the field
type Particle struct {
	X, Y float64

	// Base velocity, its sign per axis is drawn once and never flips
	VX, VY       float64
	signX, signY float64

	// Impulse velocity decays toward 0 at Resistance per nominal frame
	ExtraX, ExtraY float64
	Resistance     float64

	// Alpha is the edge fade computed on the last Advance
	Alpha float64
	Color palette.RGB

	Kind Kind

	// Connection particles only
	ConnectionRadius  float64
	ConnectionOpacity float64
}

// IsConnection reports whether p participates in the connection graph
func (p *Particle) IsConnection() bool {
	return p.Kind == KindConnection
}

// decay moves v toward 0 by step without crossing it
func decay(v, step float64) float64 {
	switch {
	case v > 0:
		return max(v-step, 0)
	case v < 0:
		return min(v+step, 0)
	}
	return 0
}
