package config

import (
	"time"

	"github.com/lixenwraith/starfield/parameter"
)

// Spawn algorithms selectable through Simulation.SpawnAlgorithm
const (
	SpawnUniform  = 0
	SpawnPriority = 1
)

// Simulation holds the field tunables, read by the engine every frame and only written between frames
type Simulation struct {
	// Section-driven values, rewritten by the conductor on every section change
	SpawnAlgorithm int
	Warp           bool
	WorldSpeed     float64 // target, 0 means not yet set

	RotationEnabled bool

	// Physics
	StarRadius     float64
	StarMinSpeed   float64
	StarMaxSpeed   float64
	EdgeSize       float64
	WorldSpeedStep float64

	// Connections
	MinConnectionRadius float64
	MaxConnectionRadius float64
	StarPulseSpeed      float64
	OpacityStep         float64
	LineWidth           float64

	// Population
	ParticleDensity   float64
	ConnectionDensity float64
	MinParticles      int
	MaxParticles      int
	MinConnections    int
	MaxConnections    int
	SpawnLimiter      float64

	// Debug drawing
	DrawDebug     bool
	DrawDebugText bool
}

// Sync holds the beat-synchronization tunables
type Sync struct {
	BeatStrength       float64
	BeatResistance     float64
	MinBeatResistance  float64
	BeatMinConfidence  float64
	TatumMinConfidence float64

	LoudnessBaseline           float64
	LoudnessExtra              float64
	LoudnessScale              float64
	LoudnessBaselineRadii      float64
	LoudnessScaleRadii         float64
	PushSpeedMax               float64
	PushSpeedMin               float64
	RotSpeedTempoDiv           float64
	ConnectionRadiusMinProduct float64
	TempoWorldSpeed            float64
	WarpSpeedScaler            float64
	SpawnRadiusProduct         float64
	MinSpawnRadius             float64

	PollInterval          time.Duration
	FastPollInterval      time.Duration
	PollTimeoutTracked    time.Duration
	PollTimeoutIdle       time.Duration
	BackwardSeekTolerance time.Duration
	ForwardDriftTolerance time.Duration

	RestartCursorWhenPastEnd bool

	AnalysisRetryDelay   time.Duration
	StillGettingInterval time.Duration
	StatusClearDelay     time.Duration
}

// Settings bundles both option sets behind one SetOption contract
type Settings struct {
	Simulation Simulation
	Sync       Sync
}

// DefaultSimulation returns the field defaults
func DefaultSimulation() Simulation {
	return Simulation{
		SpawnAlgorithm:      SpawnPriority,
		Warp:                true,
		RotationEnabled:     true,
		StarRadius:          parameter.StarRadius,
		StarMinSpeed:        parameter.StarMinSpeed,
		StarMaxSpeed:        parameter.StarMaxSpeed,
		EdgeSize:            parameter.EdgeSize,
		WorldSpeedStep:      parameter.WorldSpeedStep,
		MinConnectionRadius: parameter.MinConnectionRadius,
		MaxConnectionRadius: parameter.MaxConnectionRadius,
		StarPulseSpeed:      parameter.StarPulseSpeed,
		OpacityStep:         parameter.OpacityStep,
		LineWidth:           parameter.LineWidth,
		ParticleDensity:     parameter.StarPopulationDensity,
		ConnectionDensity:   parameter.ConnectionPopulationDensity,
		MinParticles:        parameter.MinStarPopulation,
		MaxParticles:        parameter.MaxStarPopulation,
		MinConnections:      parameter.MinConnectionPopulation,
		MaxConnections:      parameter.MaxConnectionPopulation,
		SpawnLimiter:        parameter.SpawnLimiter,
	}
}

// DefaultSync returns the synchronization defaults
func DefaultSync() Sync {
	return Sync{
		BeatStrength:               parameter.BeatStrength,
		BeatResistance:             parameter.BeatResistance,
		MinBeatResistance:          parameter.MinBeatResistance,
		BeatMinConfidence:          parameter.BeatMinConfidence,
		TatumMinConfidence:         parameter.TatumMinConfidence,
		LoudnessBaseline:           parameter.LoudnessBaseline,
		LoudnessExtra:              parameter.LoudnessExtra,
		LoudnessScale:              parameter.LoudnessScale,
		LoudnessBaselineRadii:      parameter.LoudnessBaselineRadii,
		LoudnessScaleRadii:         parameter.LoudnessScaleRadii,
		PushSpeedMax:               parameter.PushSpeedMax,
		PushSpeedMin:               parameter.PushSpeedMin,
		RotSpeedTempoDiv:           parameter.RotSpeedTempoDiv,
		ConnectionRadiusMinProduct: parameter.ConnectionRadiusMinProduct,
		TempoWorldSpeed:            parameter.TempoWorldSpeed,
		WarpSpeedScaler:            parameter.WarpSpeedScaler,
		SpawnRadiusProduct:         parameter.SpawnRadiusProduct,
		MinSpawnRadius:             parameter.MinSpawnRadius,
		PollInterval:               parameter.PollInterval,
		FastPollInterval:           parameter.FastPollInterval,
		PollTimeoutTracked:         parameter.PollTimeoutTracked,
		PollTimeoutIdle:            parameter.PollTimeoutIdle,
		BackwardSeekTolerance:      parameter.BackwardSeekTolerance,
		ForwardDriftTolerance:      parameter.ForwardDriftTolerance,
		RestartCursorWhenPastEnd:   parameter.RestartCursorWhenPastEnd,
		AnalysisRetryDelay:         parameter.AnalysisRetryDelay,
		StillGettingInterval:       parameter.AnalysisStillGetting,
		StatusClearDelay:           parameter.StatusClearDelay,
	}
}

// DefaultSettings returns both default option sets
func DefaultSettings() *Settings {
	return &Settings{
		Simulation: DefaultSimulation(),
		Sync:       DefaultSync(),
	}
}
