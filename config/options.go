package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidValue  = errors.New("invalid option value")
)

// Option describes one settable key
type Option struct {
	Key  string
	Help string
	get  func() string
	set  func(string) error
}

// Value returns the current value formatted as it would be written in a settings file
func (o Option) Value() string {
	return o.get()
}

func floatOption(key, help string, p *float64) Option {
	return Option{
		Key:  key,
		Help: help,
		get:  func() string { return strconv.FormatFloat(*p, 'g', -1, 64) },
		set: func(v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || f < 0 {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
			}
			*p = f
			return nil
		},
	}
}

// signedFloatOption accepts negative values (loudness offsets are in dB)
func signedFloatOption(key, help string, p *float64) Option {
	o := floatOption(key, help, p)
	o.set = func(v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
		}
		*p = f
		return nil
	}
	return o
}

func intOption(key, help string, p *int) Option {
	return Option{
		Key:  key,
		Help: help,
		get:  func() string { return strconv.Itoa(*p) },
		set: func(v string) error {
			// Settings panels send numbers as floats
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || f < 0 {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
			}
			*p = int(f)
			return nil
		},
	}
}

func boolOption(key, help string, p *bool) Option {
	return Option{
		Key:  key,
		Help: help,
		get: func() string {
			if *p {
				return "1"
			}
			return "0"
		},
		set: func(v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
			}
			*p = b
			return nil
		},
	}
}

// durationOption reads plain numbers as milliseconds, Go duration strings are accepted too
func durationOption(key, help string, p *time.Duration) Option {
	return Option{
		Key:  key,
		Help: help,
		get:  func() string { return strconv.FormatInt(p.Milliseconds(), 10) },
		set: func(v string) error {
			v = strings.TrimSpace(v)
			if ms, err := strconv.ParseFloat(v, 64); err == nil && ms >= 0 {
				*p = time.Duration(ms * float64(time.Millisecond))
				return nil
			}
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
			}
			*p = d
			return nil
		},
	}
}

func spawnAlgorithmOption(p *int) Option {
	return Option{
		Key:  "spawn_algorithm",
		Help: "0 uniform, 1 priority/radius-bounded",
		get:  func() string { return strconv.Itoa(*p) },
		set: func(v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || (n != SpawnUniform && n != SpawnPriority) {
				return fmt.Errorf("%w: spawn_algorithm=%q", ErrInvalidValue, v)
			}
			*p = n
			return nil
		},
	}
}

// Options lists every settable key bound to s, sorted by key
func (s *Settings) Options() []Option {
	sim := &s.Simulation
	syn := &s.Sync

	opts := []Option{
		spawnAlgorithmOption(&sim.SpawnAlgorithm),
		boolOption("warp", "radial warp acceleration", &sim.Warp),
		floatOption("world_speed", "target world speed, 0 until a section sets it", &sim.WorldSpeed),
		boolOption("rotation_enabled", "rotate the field about the canvas center", &sim.RotationEnabled),
		floatOption("star_radius", "render radius and cull margin in pixels", &sim.StarRadius),
		floatOption("star_min_speed", "minimum base speed at creation", &sim.StarMinSpeed),
		floatOption("star_max_speed", "maximum base speed at creation", &sim.StarMaxSpeed),
		floatOption("edge_size", "fade margin in pixels", &sim.EdgeSize),
		floatOption("world_speed_step", "world speed easing step per frame", &sim.WorldSpeedStep),
		floatOption("min_connection_radius", "lower connection reach in pixels", &sim.MinConnectionRadius),
		floatOption("max_connection_radius", "upper connection reach in pixels", &sim.MaxConnectionRadius),
		floatOption("star_pulse_speed", "connection radius multiplier easing rate", &sim.StarPulseSpeed),
		floatOption("opacity_step", "edge fade-in rate per frame", &sim.OpacityStep),
		floatOption("line_width", "edge stroke width", &sim.LineWidth),
		floatOption("particle_density", "particles per square pixel", &sim.ParticleDensity),
		floatOption("connection_density", "connection particles per square pixel", &sim.ConnectionDensity),
		intOption("min_particles", "particle cap floor", &sim.MinParticles),
		intOption("max_particles", "particle cap ceiling", &sim.MaxParticles),
		intOption("min_connections", "connection cap floor", &sim.MinConnections),
		intOption("max_connections", "connection cap ceiling", &sim.MaxConnections),
		floatOption("spawn_limiter", "spawn area connection floor divisor", &sim.SpawnLimiter),
		boolOption("draw_debug", "draw debug markers", &sim.DrawDebug),
		boolOption("draw_debug_text", "draw full debug text", &sim.DrawDebugText),

		floatOption("beat_strength", "beat impulse base strength", &syn.BeatStrength),
		floatOption("beat_resistance", "beat impulse decay scale", &syn.BeatResistance),
		floatOption("min_beat_resistance", "beat impulse decay floor", &syn.MinBeatResistance),
		floatOption("beat_min_confidence", "beats at or below this confidence are dropped", &syn.BeatMinConfidence),
		floatOption("tatum_min_confidence", "tatums at or below this confidence are dropped", &syn.TatumMinConfidence),
		signedFloatOption("loudness_baseline", "section loudness baseline (dB)", &syn.LoudnessBaseline),
		signedFloatOption("loudness_extra", "loudness offset (dB)", &syn.LoudnessExtra),
		floatOption("loudness_scale", "section loudness scale", &syn.LoudnessScale),
		signedFloatOption("loudness_baseline_radii", "segment loudness baseline (dB)", &syn.LoudnessBaselineRadii),
		floatOption("loudness_scale_radii", "segment loudness scale", &syn.LoudnessScaleRadii),
		floatOption("push_speed_max", "push speed upper clamp", &syn.PushSpeedMax),
		floatOption("push_speed_min", "push speed lower clamp", &syn.PushSpeedMin),
		floatOption("rot_speed_tempo_div", "tempo divisor for rotation speed", &syn.RotSpeedTempoDiv),
		floatOption("connection_radius_min_product", "connection radius multiplier floor", &syn.ConnectionRadiusMinProduct),
		floatOption("tempo_world_speed", "tempo divisor for world speed", &syn.TempoWorldSpeed),
		floatOption("warp_speed_scaler", "warp speed numerator", &syn.WarpSpeedScaler),
		floatOption("spawn_radius_product", "spawn radius scale", &syn.SpawnRadiusProduct),
		floatOption("min_spawn_radius", "spawn radius floor in pixels", &syn.MinSpawnRadius),
		durationOption("poll_interval_ms", "poll cadence while synced", &syn.PollInterval),
		durationOption("fast_poll_interval_ms", "poll cadence while establishing sync", &syn.FastPollInterval),
		durationOption("poll_timeout_tracked_ms", "poll request timeout once a track is known", &syn.PollTimeoutTracked),
		durationOption("poll_timeout_idle_ms", "poll request timeout before a track is known", &syn.PollTimeoutIdle),
		durationOption("backward_seek_tolerance_ms", "how far behind the estimate a poll may be before resync", &syn.BackwardSeekTolerance),
		durationOption("forward_drift_tolerance_ms", "how far ahead of the estimate a poll may be before resync", &syn.ForwardDriftTolerance),
		boolOption("restart_cursor_when_past_end", "restart beat cursors at 0 when past every entry", &syn.RestartCursorWhenPastEnd),
		durationOption("analysis_retry_delay_ms", "delay between analysis fetch attempts", &syn.AnalysisRetryDelay),
		durationOption("still_getting_interval_ms", "status reminder cadence during a fetch", &syn.StillGettingInterval),
		durationOption("status_clear_delay_ms", "delay before a recovered status log clears", &syn.StatusClearDelay),
	}

	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}

// Keys returns every settable key in sorted order
func (s *Settings) Keys() []string {
	return lo.Map(s.Options(), func(o Option, _ int) string { return o.Key })
}

// SetOption parses value into the option named key, the settings are left untouched on error
func (s *Settings) SetOption(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, o := range s.Options() {
		if o.Key == key {
			return o.set(value)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOption, key)
}

// Get returns the formatted current value of key
func (s *Settings) Get(key string) (string, error) {
	for _, o := range s.Options() {
		if o.Key == key {
			return o.get(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOption, key)
}

// Apply sets every entry of batch in key order and returns the errors of rejected entries
func (s *Settings) Apply(batch map[string]string) []error {
	keys := lo.Keys(batch)
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := s.SetOption(k, batch[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
