package field

import (
	"math"
	"math/rand"
	"time"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/palette"
	"github.com/lixenwraith/starfield/parameter"
)

// Stats are the per-frame and per-spawn counters exposed to the debug overlay
type Stats struct {
	Lag   float64
	Lines int

	// Spawn area census of the last SpawnTick
	InSpawn            int
	ConnectionsInSpawn int
	SpawnFloor         int

	// Spawn paths of the last SpawnTick: 0 area connection, 1 area plain, 2 fill connection, 3 fill plain
	Spawned [4]int
}

// Field owns the particle population, advances physics and the connection graph
// All methods must be called from a single goroutine
type Field struct {
	cfg *config.Simulation
	rng *rand.Rand

	width, height float64

	particles   []*Particle
	connections []*Particle // non-owning index into particles

	palette palette.Palette

	worldSpeed   float64 // actual, eased toward cfg.WorldSpeed
	radiusTarget float64
	radiusActual float64
	warpSpeed    float64
	rotation     float64 // degrees
	rotSpeed     float64
	spawnRadius  float64

	maxParticles   int
	maxConnections int

	edges []Edge
	stats Stats
}

// New creates an empty field reading its tunables from cfg on every frame
// A nil rng is seeded from the wall clock
func New(cfg *config.Simulation, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Field{
		cfg:          cfg,
		rng:          rng,
		palette:      palette.Neutral,
		radiusTarget: 1,
		radiusActual: 1,
		warpSpeed:    parameter.WarpSpeed,
		rotation:     1,
		spawnRadius:  parameter.SpawnRadius,
	}
}

// Resize re-homes particles proportionally and recomputes population caps
func (f *Field) Resize(width, height float64) {
	if f.width > 0 && f.height > 0 {
		sx := width / f.width
		sy := height / f.height
		for _, p := range f.particles {
			p.X *= sx
			p.Y *= sy
		}
	}
	f.width, f.height = width, height
	f.computeCaps()
}

func (f *Field) computeCaps() {
	area := f.width * f.height
	f.maxParticles = capFor(area, f.cfg.ParticleDensity, f.cfg.MinParticles, f.cfg.MaxParticles)
	f.maxConnections = capFor(area, f.cfg.ConnectionDensity, f.cfg.MinConnections, f.cfg.MaxConnections)
}

func capFor(area, density float64, floor, ceiling int) int {
	n := int(math.Floor(area * density))
	return min(ceiling, max(floor, n))
}

// Advance moves the simulation forward by dt of wall-clock time
func (f *Field) Advance(dt time.Duration) {
	cfg := f.cfg

	// Cap displacement after a stall
	lag := min(parameter.MaxLagMultiplier, max(0, float64(dt)/float64(parameter.NominalFrameInterval)))
	f.stats.Lag = lag

	// Density or bounds may have changed through SetOption
	f.computeCaps()

	if f.worldSpeed == 0 && cfg.WorldSpeed != 0 {
		f.worldSpeed = cfg.WorldSpeed
	}
	if cfg.WorldSpeed != 0 {
		f.worldSpeed = approach(f.worldSpeed, cfg.WorldSpeed, cfg.WorldSpeedStep*lag)
	}
	ws := f.WorldSpeed()

	f.radiusActual = approach(f.radiusActual, f.radiusTarget, cfg.StarPulseSpeed*ws*lag)

	cx, cy := f.Center()
	for _, p := range f.particles {
		p.X += p.VX * ws * lag
		p.Y += p.VY * ws * lag

		if cfg.Warp {
			// Further from center accelerates more, only ever along the drift direction
			zx := ((p.X - cx) / parameter.WarpDivisor) * f.warpSpeed
			zy := ((p.Y - cy) / parameter.WarpDivisor) * f.warpSpeed
			if zx*p.signX > 0 {
				p.VX += zx
			}
			if zy*p.signY > 0 {
				p.VY += zy
			}
		}

		if p.ExtraX != 0 || p.ExtraY != 0 {
			p.ExtraX = decay(p.ExtraX, p.Resistance*lag)
			p.ExtraY = decay(p.ExtraY, p.Resistance*lag)
			p.X += p.ExtraX * lag
			p.Y += p.ExtraY * lag
		}
	}

	f.cull()

	for _, p := range f.particles {
		p.Alpha = f.alpha(p)
	}

	if cfg.RotationEnabled {
		f.rotation += f.rotSpeed * lag
		if f.rotation > 360 {
			f.rotation -= 360
		}
		if f.rotation < -360 {
			f.rotation += 360
		}
	}

	f.computeEdges(lag)
}

// approach steps v toward target by step without overshooting
func approach(v, target, step float64) float64 {
	if v < target {
		return min(v+step, target)
	}
	if v > target {
		return max(v-step, target)
	}
	return v
}

// cull removes every particle whose render disc leaves the canvas
func (f *Field) cull() {
	r := f.cfg.StarRadius

	kept := f.particles[:0]
	removedConnection := false
	for _, p := range f.particles {
		if p.X+r > f.width || p.X-r < 0 || p.Y+r > f.height || p.Y-r < 0 {
			if p.IsConnection() {
				removedConnection = true
			}
			continue
		}
		kept = append(kept, p)
	}
	clear(f.particles[len(kept):])
	f.particles = kept

	if !removedConnection {
		return
	}
	conns := f.connections[:0]
	for _, p := range f.particles {
		if p.IsConnection() {
			conns = append(conns, p)
		}
	}
	clear(f.connections[len(conns):])
	f.connections = conns
}

// alpha is 1 in the interior and ramps linearly to 0 inside the edge margin, edges combine by minimum
func (f *Field) alpha(p *Particle) float64 {
	e := f.cfg.EdgeSize
	if e <= 0 {
		return 1
	}
	a := 1.0
	a = min(a, p.X/e)
	a = min(a, p.Y/e)
	a = min(a, (f.width-p.X)/e)
	a = min(a, (f.height-p.Y)/e)
	return min(1, max(0, a))
}

// randomSpeed draws an integral speed in [min, max] and a drift direction
// The direction comes from the coin, so a zero speed still has one for impulses to follow
func (f *Field) randomSpeed() (speed, dir float64) {
	low, high := f.cfg.StarMinSpeed, f.cfg.StarMaxSpeed
	if high < low {
		high = low
	}
	n := math.Floor(f.rng.Float64()*(high-low+1) + low)
	dir = -1
	if f.rng.Float64() > 0.5 {
		dir = 1
	}
	return dir * n, dir
}

func (f *Field) newParticle(x, y float64, kind Kind) *Particle {
	vx, dx := f.randomSpeed()
	vy, dy := f.randomSpeed()
	p := &Particle{
		X:     x,
		Y:     y,
		VX:    vx,
		VY:    vy,
		signX: dx,
		signY: dy,
		Color: f.palette.Pick(f.rng),
		Kind:  kind,
	}
	if kind == KindConnection {
		low := f.cfg.MinConnectionRadius
		high := max(low, f.cfg.MaxConnectionRadius)
		p.ConnectionRadius = low + f.rng.Float64()*(high-low)
	}
	f.particles = append(f.particles, p)
	if kind == KindConnection {
		f.connections = append(f.connections, p)
	}
	return p
}

// ApplyImpulse kicks every connection particle along its base-velocity direction
func (f *Field) ApplyImpulse(magnitude, resistance float64) {
	for _, p := range f.connections {
		p.ExtraX = p.signX * magnitude
		p.ExtraY = p.signY * magnitude
		p.Resistance = resistance
	}
}

// WorldSpeed returns the effective world speed, 1 until a target has been set
func (f *Field) WorldSpeed() float64 {
	if f.worldSpeed == 0 {
		return 1
	}
	return f.worldSpeed
}

// Center returns the canvas center
func (f *Field) Center() (float64, float64) {
	return f.width / 2, f.height / 2
}

// Size returns the canvas dimensions
func (f *Field) Size() (float64, float64) {
	return f.width, f.height
}

// SetPalette changes the color source for particles created from now on
func (f *Field) SetPalette(p palette.Palette) {
	f.palette = p
}

// SetRadiusTarget sets the connection radius multiplier the graph eases toward
func (f *Field) SetRadiusTarget(v float64) {
	f.radiusTarget = v
}

// SetWarpSpeed sets the radial acceleration factor
func (f *Field) SetWarpSpeed(v float64) {
	f.warpSpeed = v
}

// SetSpawnRadius sets the priority spawn area radius
func (f *Field) SetSpawnRadius(v float64) {
	f.spawnRadius = v
}

// SetRotationSpeed sets the rotation rate in degrees per nominal frame
func (f *Field) SetRotationSpeed(v float64) {
	f.rotSpeed = v
}

// Len returns the live particle count
func (f *Field) Len() int { return len(f.particles) }

// Connections returns the live connection particle count
func (f *Field) Connections() int { return len(f.connections) }

// Caps returns the population caps for the current canvas
func (f *Field) Caps() (maxParticles, maxConnections int) {
	return f.maxParticles, f.maxConnections
}

// Particles exposes the live population, callers must not retain or mutate it
func (f *Field) Particles() []*Particle { return f.particles }

// Edges returns the edges computed by the last Advance
func (f *Field) Edges() []Edge { return f.edges }

// Stats returns the last frame and spawn counters
func (f *Field) Stats() Stats { return f.stats }

// Rotation returns the current rotation in degrees
func (f *Field) Rotation() float64 { return f.rotation }

// RotationSpeed returns the rotation rate
func (f *Field) RotationSpeed() float64 { return f.rotSpeed }

// RadiusProduct returns the actual and target connection radius multipliers
func (f *Field) RadiusProduct() (actual, target float64) {
	return f.radiusActual, f.radiusTarget
}

// WarpSpeed returns the radial acceleration factor
func (f *Field) WarpSpeed() float64 { return f.warpSpeed }

// SpawnRadius returns the priority spawn area radius
func (f *Field) SpawnRadius() float64 { return f.spawnRadius }
