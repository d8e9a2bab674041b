package parameter

import (
	"time"
)

// Beat impulse
const (
	BeatStrength   = 12.0
	BeatResistance = 1.0
	// MinBeatResistance keeps impulses decaying when a beat lasts longer than a second
	MinBeatResistance = 0.01

	BeatMinConfidence  = 0.15
	TatumMinConfidence = 0.45
)

// Section and segment mapping
const (
	LoudnessBaseline = 20.0
	LoudnessExtra    = 10.0
	LoudnessScale    = 20.0

	LoudnessBaselineRadii = 30.0
	LoudnessScaleRadii    = 30.0

	PushSpeedMax = 1.4
	PushSpeedMin = 0.9

	RotSpeedTempoDiv           = 360 * 2
	ConnectionRadiusMinProduct = 0.3
	TempoWorldSpeed            = 480.0
	WarpSpeedScaler            = 0.0025
	SpawnRadiusProduct         = 3.0
	MinSpawnRadius             = 300.0

	// WarpLoudness/WarpQuietLoudness/WarpTempo decide warp mode per section
	WarpLoudness      = -3.0
	WarpQuietLoudness = -9.0
	WarpTempo         = 90.0

	WarpWorldSpeedFactor   = 1.65
	NormalWorldSpeedFactor = 2.0
)

// Playback polling
const (
	PollInterval     = 1200 * time.Millisecond
	FastPollInterval = 600 * time.Millisecond

	// PollTimeoutTracked applies once a track is known, PollTimeoutIdle before that
	PollTimeoutTracked = 1 * time.Second
	PollTimeoutIdle    = 30 * time.Second

	BackwardSeekTolerance = 750 * time.Millisecond
	ForwardDriftTolerance = 3 * time.Second

	// RestartCursorWhenPastEnd restarts beat/tatum cursors at 0 when progress is past every entry
	RestartCursorWhenPastEnd = true
)

// Analysis fetch
const (
	AnalysisRetryDelay    = 1 * time.Second
	AnalysisStillGetting  = 3 * time.Second
	StatusClearDelay      = 750 * time.Millisecond
	AnalysisCacheTTL      = 7 * 24 * time.Hour
	AnalysisCacheKeySpace = "analysis:"
)
