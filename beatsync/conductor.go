package beatsync

import (
	"math"

	"github.com/samber/lo"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/field"
	"github.com/lixenwraith/starfield/palette"
	"github.com/lixenwraith/starfield/parameter"
)

// Mood is the field tuning derived from one section
type Mood struct {
	Warp           bool
	WorldSpeed     float64
	SpawnAlgorithm int
	PushSpeed      float64
	WarpSpeed      float64 // 0 when the section has no tempo
	SpawnRadius    float64
	RotationSpeed  float64
}

// SectionMood maps section tempo and loudness onto field tuning
func SectionMood(sec Section, cfg *config.Sync) Mood {
	warp := sec.Loudness < parameter.WarpLoudness &&
		(sec.Tempo < parameter.WarpTempo || (sec.Tempo > parameter.WarpTempo && sec.Loudness < parameter.WarpQuietLoudness))

	factor := parameter.NormalWorldSpeedFactor
	if warp {
		factor = parameter.WarpWorldSpeedFactor
	}

	m := Mood{
		Warp:           warp,
		SpawnAlgorithm: config.SpawnUniform,
		RotationSpeed:  math.Sin(sec.Tempo / cfg.RotSpeedTempoDiv),
	}
	if cfg.TempoWorldSpeed > 0 {
		m.WorldSpeed = sec.Tempo / cfg.TempoWorldSpeed * factor
	}
	if warp || sec.Tempo > parameter.WarpTempo {
		m.SpawnAlgorithm = config.SpawnPriority
	}

	push := 0.0
	if cfg.LoudnessScale > 0 {
		push = math.Abs(-(sec.Loudness+cfg.LoudnessExtra)-cfg.LoudnessBaseline) / cfg.LoudnessScale
	}
	m.PushSpeed = lo.Clamp(push, cfg.PushSpeedMin, cfg.PushSpeedMax)

	if m.PushSpeed > 0 && sec.Tempo > 0 {
		m.WarpSpeed = cfg.WarpSpeedScaler / (m.PushSpeed * sec.Tempo)
	}
	m.SpawnRadius = math.Trunc(max(cfg.MinSpawnRadius, m.PushSpeed*sec.Tempo*cfg.SpawnRadiusProduct))
	return m
}

// SegmentRadius maps segment start loudness onto the connection radius multiplier
func SegmentRadius(seg Segment, cfg *config.Sync) float64 {
	r := 0.0
	if cfg.LoudnessScaleRadii > 0 {
		r = math.Abs(-(seg.LoudnessStart+cfg.LoudnessExtra)-cfg.LoudnessBaselineRadii) / cfg.LoudnessScaleRadii
	}
	return max(cfg.ConnectionRadiusMinProduct, r)
}

// Conductor turns musical events into field changes
type Conductor struct {
	field *field.Field
	sim   *config.Simulation
	sync  *config.Sync

	pushSpeed float64
	section   *Section
	beats     int
	tatums    int
}

// NewConductor drives f, section changes rewrite the section-driven fields of sim
func NewConductor(f *field.Field, sim *config.Simulation, sync *config.Sync) *Conductor {
	return &Conductor{
		field:     f,
		sim:       sim,
		sync:      sync,
		pushSpeed: 1,
	}
}

// OnBeat kicks every connection particle outward along its drift
func (c *Conductor) OnBeat(b Beat) {
	c.beats++
	if c.field.Connections() == 0 {
		return
	}
	v := c.sync.BeatStrength * b.Confidence * c.field.WorldSpeed()
	resistance := max(c.sync.MinBeatResistance, (1-b.Duration)*c.sync.BeatResistance)
	c.field.ApplyImpulse(c.pushSpeed*v, resistance)
}

func (c *Conductor) OnTatum(Tatum) {
	c.tatums++
	c.field.SpawnTick()
}

func (c *Conductor) OnSegment(seg Segment) {
	c.field.SetRadiusTarget(SegmentRadius(seg, c.sync))
	c.field.SpawnTick()
}

func (c *Conductor) OnSection(sec Section) {
	m := SectionMood(sec, c.sync)

	c.section = &sec
	c.pushSpeed = m.PushSpeed

	c.sim.Warp = m.Warp
	c.sim.WorldSpeed = m.WorldSpeed
	c.sim.SpawnAlgorithm = m.SpawnAlgorithm

	c.field.SetPalette(palette.ForKey(sec.Key))
	if m.WarpSpeed > 0 {
		c.field.SetWarpSpeed(m.WarpSpeed)
	}
	c.field.SetSpawnRadius(m.SpawnRadius)
	c.field.SetRotationSpeed(m.RotationSpeed)
}

// Seed keeps a connection particle near the center while music plays
func (c *Conductor) Seed() {
	c.field.Seed()
}

// PushSpeed is the impulse scale of the current section
func (c *Conductor) PushSpeed() float64 { return c.pushSpeed }

// Section returns the last applied section
func (c *Conductor) Section() (Section, bool) {
	if c.section == nil {
		return Section{}, false
	}
	return *c.section, true
}

// Counts returns the beats and tatums received so far
func (c *Conductor) Counts() (beats, tatums int) {
	return c.beats, c.tatums
}
