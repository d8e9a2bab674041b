package field

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/palette"
	"github.com/lixenwraith/starfield/parameter"
)

// oneFrame is a frame delta that yields a lag multiplier of exactly 1
const oneFrame = parameter.NominalFrameInterval

func newTestField(w, h float64) (*Field, *config.Simulation) {
	cfg := config.DefaultSimulation()
	cfg.Warp = false
	cfg.RotationEnabled = false
	f := New(&cfg, rand.New(rand.NewSource(1)))
	f.Resize(w, h)
	return f, &cfg
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// place adds a particle with an explicit base velocity
func place(f *Field, x, y, vx, vy float64, kind Kind) *Particle {
	p := f.newParticle(x, y, kind)
	p.VX, p.VY = vx, vy
	p.signX, p.signY = sign(vx), sign(vy)
	return p
}

func TestAlphaRange(t *testing.T) {
	f, cfg := newTestField(1000, 1000)

	tests := []struct {
		name   string
		x, y   float64
		want   float64
		opaque bool
	}{
		{"center", 500, 500, 1, true},
		{"on margin", 400, 500, 1, true},
		{"left ramp", 100, 500, 0.25, false},
		{"top ramp", 500, 200, 0.5, false},
		{"right ramp", 900, 500, 0.25, false},
		{"corner takes minimum", 100, 960, 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Particle{X: tt.x, Y: tt.y}
			got := f.alpha(p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("alpha(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
			if (got == 1) != tt.opaque {
				t.Errorf("alpha == 1 is %v, want %v", got == 1, tt.opaque)
			}
		})
	}

	// Random population stays in [0, 1] over many frames
	cfg.Warp = true
	for i := 0; i < 50; i++ {
		f.newParticle(f.rng.Float64()*1000, f.rng.Float64()*1000, KindPlain)
	}
	for frame := 0; frame < 120; frame++ {
		f.Advance(oneFrame)
		for _, p := range f.Particles() {
			if p.Alpha < 0 || p.Alpha > 1 {
				t.Fatalf("frame %d: alpha %v out of range", frame, p.Alpha)
			}
		}
	}
}

func TestCullExactlyAtBoundary(t *testing.T) {
	f, _ := newTestField(1000, 1000)

	gone := place(f, 998.5, 500, 1, 0, KindConnection)
	kept := place(f, 998, 500, 1, 0, KindConnection)
	place(f, 1.5, 500, -1, 0, KindPlain) // 0.5 - radius < 0

	f.Advance(oneFrame)

	if f.Len() != 1 || f.Particles()[0] != kept {
		t.Fatalf("survivors = %d, want only the particle ending at 999", f.Len())
	}
	if f.Connections() != 1 {
		t.Errorf("Connections() = %d, want 1", f.Connections())
	}
	for _, p := range f.connections {
		if p == gone {
			t.Error("culled particle still indexed as connection")
		}
	}
}

func TestSpawnTickEmptySeedsCenter(t *testing.T) {
	f, _ := newTestField(800, 600)

	f.SpawnTick()

	if f.Len() != 1 || f.Connections() != 1 {
		t.Fatalf("Len=%d Connections=%d, want 1/1", f.Len(), f.Connections())
	}
	p := f.Particles()[0]
	if p.X != 400 || p.Y != 300 || !p.IsConnection() {
		t.Errorf("seed = %+v, want connection particle at (400,300)", p)
	}
	if p.ConnectionRadius < parameter.MinConnectionRadius || p.ConnectionRadius > parameter.MaxConnectionRadius {
		t.Errorf("ConnectionRadius = %v, want within [%v, %v]",
			p.ConnectionRadius, parameter.MinConnectionRadius, parameter.MaxConnectionRadius)
	}
}

func TestConnectionRadiusDrawnBetweenBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
	}{
		{"default range", parameter.MinConnectionRadius, parameter.MaxConnectionRadius},
		{"narrow range", 50, 60},
		{"fixed radius", 80, 80},
		{"inverted bounds collapse to min", 90, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, cfg := newTestField(1000, 1000)
			cfg.MinConnectionRadius = tt.min
			cfg.MaxConnectionRadius = tt.max
			high := max(tt.min, tt.max)

			lowest, highest := math.Inf(1), math.Inf(-1)
			for i := 0; i < 200; i++ {
				r := f.newParticle(500, 500, KindConnection).ConnectionRadius
				if r < tt.min || r > high {
					t.Fatalf("ConnectionRadius = %v, want within [%v, %v]", r, tt.min, high)
				}
				lowest, highest = min(lowest, r), max(highest, r)
			}
			if high > tt.min && highest-lowest < (high-tt.min)/2 {
				t.Errorf("radii span [%v, %v], want spread across [%v, %v]", lowest, highest, tt.min, high)
			}
		})
	}
}

func TestZeroSpeedKeepsDrawnDirection(t *testing.T) {
	f, cfg := newTestField(1000, 1000)
	cfg.StarMinSpeed, cfg.StarMaxSpeed = 0, 0

	seen := map[float64]int{}
	for i := 0; i < 100; i++ {
		p := f.newParticle(500, 500, KindConnection)
		if p.VX != 0 || p.VY != 0 {
			t.Fatalf("velocity = (%v,%v), want zero", p.VX, p.VY)
		}
		seen[p.signX]++
		seen[p.signY]++
	}
	if seen[-1] == 0 || seen[1] == 0 || len(seen) != 2 {
		t.Fatalf("directions = %v, want both -1 and 1", seen)
	}

	f.ApplyImpulse(2, 1)
	for _, p := range f.Particles() {
		if p.ExtraX != 2*p.signX || p.ExtraY != 2*p.signY {
			t.Fatalf("impulse = (%v,%v), want along drawn direction (%v,%v)", p.ExtraX, p.ExtraY, p.signX, p.signY)
		}
	}
}

func TestSpawnTickEmptyIgnoresCaps(t *testing.T) {
	f, cfg := newTestField(800, 600)
	cfg.MaxParticles = 0
	cfg.MinParticles = 0
	f.computeCaps()

	f.SpawnTick()
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1 even with a zero cap", f.Len())
	}
}

func TestSpawnPopulationInvariant(t *testing.T) {
	for _, algo := range []int{config.SpawnUniform, config.SpawnPriority} {
		t.Run(map[int]string{config.SpawnUniform: "uniform", config.SpawnPriority: "priority"}[algo], func(t *testing.T) {
			f, cfg := newTestField(1000, 1000)
			cfg.SpawnAlgorithm = algo
			maxP, maxC := f.Caps()
			if maxP != 75 || maxC != 50 {
				t.Fatalf("Caps() = %d/%d, want 75/50", maxP, maxC)
			}

			f.SpawnTick()
			for tick := 0; tick < 40; tick++ {
				for _, p := range f.Particles() {
					p.Alpha = 1
				}
				f.SpawnTick()

				if f.Len() > maxP || f.Connections() > maxC {
					t.Fatalf("tick %d: population %d/%d exceeds caps %d/%d", tick, f.Len(), f.Connections(), maxP, maxC)
				}
			}
			if f.Len() != maxP {
				t.Errorf("population settled at %d, want cap %d", f.Len(), maxP)
			}
		})
	}
}

func TestSpawnUniformNeedsOpaqueParents(t *testing.T) {
	f, cfg := newTestField(1000, 1000)
	cfg.SpawnAlgorithm = config.SpawnUniform

	opaque := place(f, 500, 500, 1, 1, KindConnection)
	opaque.Alpha = 1
	place(f, 100, 100, 1, 1, KindConnection).Alpha = 0.25
	place(f, 500, 500, 1, 1, KindPlain).Alpha = 1

	f.SpawnTick()

	if f.Len() != 4 || f.Connections() != 3 {
		t.Errorf("Len=%d Connections=%d, want 4/3", f.Len(), f.Connections())
	}
	last := f.Particles()[f.Len()-1]
	if last.X != opaque.X || last.Y != opaque.Y {
		t.Errorf("offspring at (%v,%v), want parent position", last.X, last.Y)
	}
}

func TestSpawnPriorityFloor(t *testing.T) {
	f, cfg := newTestField(1000, 1000)
	cfg.SpawnAlgorithm = config.SpawnPriority
	f.SetSpawnRadius(100)
	f.SetRadiusTarget(1)

	// floor(100 / (1 * 10))
	if got := f.SpawnFloor(); got != 10 {
		t.Fatalf("SpawnFloor() = %d, want 10", got)
	}

	for i := 0; i < 3; i++ {
		place(f, 500, 500, 1, 1, KindConnection).Alpha = 1
	}
	f.SpawnTick()

	st := f.Stats()
	if st.Spawned[0] != 3 {
		t.Errorf("area connection spawns = %d, want 3", st.Spawned[0])
	}
	if st.InSpawn != 3 || st.ConnectionsInSpawn != 6 {
		t.Errorf("census InSpawn=%d ConnectionsInSpawn=%d, want 3/6", st.InSpawn, st.ConnectionsInSpawn)
	}
}

func TestResizeRehomesProportionally(t *testing.T) {
	f, _ := newTestField(1000, 1000)
	p := place(f, 250, 500, 1, 1, KindPlain)
	place(f, 750, 100, 1, 1, KindConnection)

	f.Resize(2000, 500)

	if p.X != 500 || p.Y != 250 {
		t.Errorf("particle at (%v,%v), want (500,250)", p.X, p.Y)
	}
	if f.Len() != 2 || f.Connections() != 1 {
		t.Errorf("population changed on resize: %d/%d", f.Len(), f.Connections())
	}
	maxP, maxC := f.Caps()
	if maxP != 75 || maxC != 50 {
		t.Errorf("Caps() = %d/%d, want 75/50 for 1e6 px", maxP, maxC)
	}

	f.Resize(3000, 3000)
	maxP, maxC = f.Caps()
	// 9e6 px: floor(405) clamps to 300, floor(180) clamps to 140
	if maxP != 300 || maxC != 140 {
		t.Errorf("Caps() = %d/%d, want 300/140", maxP, maxC)
	}
}

func TestWorldSpeedEasing(t *testing.T) {
	f, cfg := newTestField(1000, 1000)

	if f.WorldSpeed() != 1 {
		t.Fatalf("unset world speed = %v, want 1", f.WorldSpeed())
	}

	cfg.WorldSpeed = 0.5
	f.Advance(oneFrame)
	if f.WorldSpeed() != 0.5 {
		t.Fatalf("first target jumps, got %v want 0.5", f.WorldSpeed())
	}

	cfg.WorldSpeed = 1
	f.Advance(oneFrame)
	if got := f.WorldSpeed(); math.Abs(got-0.51) > 1e-9 {
		t.Errorf("after one step = %v, want 0.51", got)
	}
	for i := 0; i < 100; i++ {
		f.Advance(oneFrame)
		if f.WorldSpeed() > 1 {
			t.Fatalf("overshoot: %v", f.WorldSpeed())
		}
	}
	if f.WorldSpeed() != 1 {
		t.Errorf("settled at %v, want 1", f.WorldSpeed())
	}
}

func TestLagMultiplierCapped(t *testing.T) {
	f, _ := newTestField(1000, 1000)
	p := place(f, 500, 500, 1, 0, KindPlain)

	f.Advance(10 * oneFrame)

	if f.Stats().Lag != parameter.MaxLagMultiplier {
		t.Errorf("Lag = %v, want %v", f.Stats().Lag, parameter.MaxLagMultiplier)
	}
	if p.X != 502 {
		t.Errorf("X = %v, want 502 after a capped stall", p.X)
	}
}

func TestImpulseDecayHoldsSign(t *testing.T) {
	f, _ := newTestField(1000, 1000)
	c := place(f, 500, 500, -1, 2, KindConnection)
	plain := place(f, 500, 500, 1, 1, KindPlain)

	f.ApplyImpulse(3, 1)

	if c.ExtraX != -3 || c.ExtraY != 3 {
		t.Fatalf("impulse = (%v,%v), want (-3,3) along base velocity", c.ExtraX, c.ExtraY)
	}
	if plain.ExtraX != 0 {
		t.Error("plain particles must not receive impulses")
	}

	for i := 0; i < 10; i++ {
		f.Advance(oneFrame)
		if c.ExtraX > 0 || c.ExtraY < 0 {
			t.Fatalf("frame %d: impulse crossed zero (%v,%v)", i, c.ExtraX, c.ExtraY)
		}
	}
	if c.ExtraX != 0 || c.ExtraY != 0 {
		t.Errorf("impulse not fully decayed: (%v,%v)", c.ExtraX, c.ExtraY)
	}
}

func TestWarpNeverFlipsBaseVelocity(t *testing.T) {
	f, cfg := newTestField(1000, 1000)
	cfg.Warp = true
	f.SetWarpSpeed(0.01)

	inbound := place(f, 100, 500, 1, 0, KindPlain)
	outbound := place(f, 900, 500, 1, 0, KindPlain)
	for i := 0; i < 60; i++ {
		f.newParticle(f.rng.Float64()*1000, f.rng.Float64()*1000, KindPlain)
	}

	f.Advance(oneFrame)
	if inbound.VX != 1 {
		t.Errorf("inbound VX = %v, want unchanged 1", inbound.VX)
	}
	if outbound.VX <= 1 {
		t.Errorf("outbound VX = %v, want accelerated", outbound.VX)
	}

	for i := 0; i < 200; i++ {
		f.Advance(oneFrame)
		for _, p := range f.Particles() {
			if p.VX*p.signX < 0 || p.VY*p.signY < 0 {
				t.Fatalf("frame %d: base velocity flipped sign", i)
			}
		}
	}
}

func TestEdgesFadeIn(t *testing.T) {
	f, _ := newTestField(1000, 1000)
	c := place(f, 500, 500, 0, 0, KindConnection)
	c.ConnectionRadius = parameter.MaxConnectionRadius
	place(f, 520, 500, 0, 0, KindPlain)
	place(f, 800, 500, 0, 0, KindPlain)

	f.Advance(oneFrame)

	edges := f.Edges()
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1 (self and far particle excluded)", len(edges))
	}
	if math.Abs(c.ConnectionOpacity-parameter.OpacityStep) > 1e-12 {
		t.Errorf("opacity = %v, want one step", c.ConnectionOpacity)
	}
	if edges[0].Alpha != c.ConnectionOpacity {
		t.Errorf("edge alpha = %v, want opacity-limited %v", edges[0].Alpha, c.ConnectionOpacity)
	}

	prev := c.ConnectionOpacity
	for i := 0; i < 10; i++ {
		f.Advance(oneFrame)
		if c.ConnectionOpacity <= prev {
			t.Fatalf("opacity not increasing: %v -> %v", prev, c.ConnectionOpacity)
		}
		prev = c.ConnectionOpacity
	}
	if f.Stats().Lines != 1 {
		t.Errorf("Lines = %d, want 1", f.Stats().Lines)
	}
}

func TestEffectiveRadiusGrowsOffCenter(t *testing.T) {
	f, _ := newTestField(4000, 4000)
	center := &Particle{X: 2000, Y: 2000, ConnectionRadius: 120}
	far := &Particle{X: 100, Y: 2000, ConnectionRadius: 120}

	if got := f.EffectiveRadius(center); got != 120 {
		t.Errorf("center radius = %v, want 120", got)
	}
	want := 120 * 1900 / parameter.RadiusPerspectiveDivisor
	if got := f.EffectiveRadius(far); math.Abs(got-want) > 1e-9 {
		t.Errorf("far radius = %v, want %v", got, want)
	}
}

type countingCanvas struct {
	circles, lines int
}

func (c *countingCanvas) FillCircle(x, y, r float64, col palette.RGB, alpha float64) { c.circles++ }
func (c *countingCanvas) StrokeLine(x0, y0, x1, y1, w float64, col palette.RGB, alpha float64) {
	c.lines++
}

func TestDrawCounts(t *testing.T) {
	f, cfg := newTestField(1000, 1000)
	cfg.RotationEnabled = true
	f.SetRotationSpeed(1)
	place(f, 500, 500, 0, 0, KindConnection)
	place(f, 510, 500, 0, 0, KindPlain)
	place(f, 520, 510, 0, 0, KindPlain)
	f.Advance(oneFrame)

	var c countingCanvas
	f.Draw(&c)

	if c.circles != 3 || c.lines != 2 {
		t.Errorf("drew %d circles %d lines, want 3/2", c.circles, c.lines)
	}
	if f.Rotation() != 2 {
		t.Errorf("Rotation() = %v, want 2", f.Rotation())
	}
}
