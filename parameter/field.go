package parameter

import (
	"time"
)

// Frame timing
const (
	// NominalFrameInterval is the frame length the per-frame rates are tuned for (60 Hz)
	NominalFrameInterval = 16670 * time.Microsecond

	// MaxLagMultiplier caps displacement after a stall to two nominal frames
	MaxLagMultiplier = 2.0

	// FrameUpdateInterval is the host render tick
	FrameUpdateInterval = 16 * time.Millisecond
)

// Particle physics
const (
	// StarRadius is the render radius in canvas pixels, also the cull margin
	StarRadius = 1.0
	// StarRadiusLight is the render radius used by the light theme
	StarRadiusLight = 3.0

	// StarMinSpeed/StarMaxSpeed bound the integral base speed drawn at creation
	StarMinSpeed = 1.0
	StarMaxSpeed = 2.0

	// EdgeSize is the margin in pixels where particles fade toward the canvas edge
	EdgeSize = 400.0

	// WorldSpeedStep is the per-frame easing step of the effective world speed
	WorldSpeedStep = 0.01

	// WarpSpeed is the initial radial acceleration factor before a section sets one
	WarpSpeed = 0.004

	// WarpDivisor scales center offset before applying warp (e/20)
	WarpDivisor = 2.718281828459045 / 20
)

// Connection graph
const (
	// MinConnectionRadius/MaxConnectionRadius bound connection reach in pixels, new connection particles use the max
	MinConnectionRadius = 30.0
	MaxConnectionRadius = 120.0

	// StarPulseSpeed is the easing rate of the connection radius multiplier
	StarPulseSpeed = 0.00065

	// OpacityStep is the per-frame fade-in rate of connection edges
	OpacityStep = 0.0005

	// LineWidth/LineWidthLight are edge stroke widths per theme
	LineWidth      = 3.0
	LineWidthLight = 5.0

	// RadiusPerspectiveDivisor converts center offset into the radius enlargement factor (e*175)
	RadiusPerspectiveDivisor = 2.718281828459045 * 175
)

// Population control
const (
	// StarPopulationDensity is particles per square pixel
	StarPopulationDensity = 0.000045
	// ConnectionPopulationDensity is connection particles per square pixel
	ConnectionPopulationDensity = 0.00002

	MinStarPopulation       = 75
	MaxStarPopulation       = 300
	MinConnectionPopulation = 50
	MaxConnectionPopulation = 140

	// SpawnLimiter divides spawn radius into the connection floor of the spawn area
	SpawnLimiter = 10.0

	// SpawnRadius is the initial spawn area radius before a section sets one
	SpawnRadius = 400.0
)
