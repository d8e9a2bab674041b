package engine

import (
	"fmt"
	"time"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/status"
)

// fpsSmoothing weights the newest frame in the FPS moving average
const fpsSmoothing = 0.1

// publish writes this frame's counters into the metrics registry
func (h *Host) publish(now time.Time, dt time.Duration) {
	m := h.metrics
	f := h.field
	st := f.Stats()
	sim := &h.settings.Simulation

	if dt > 0 {
		inst := float64(time.Second) / float64(dt)
		if h.fps == 0 {
			h.fps = inst
		} else {
			h.fps += (inst - h.fps) * fpsSmoothing
		}
	}
	m.Floats.Get(status.KeyFPS).Set(h.fps)
	m.Floats.Get(status.KeyFrameDelta).Set(float64(dt) / float64(time.Millisecond))
	m.Floats.Get(status.KeyLag).Set(st.Lag)

	maxP, maxC := f.Caps()
	m.Ints.Get(status.KeyParticles).Store(int64(f.Len()))
	m.Ints.Get(status.KeyConnections).Store(int64(f.Connections()))
	m.Ints.Get(status.KeyLines).Store(int64(st.Lines))
	m.Ints.Get(status.KeyMaxParticles).Store(int64(maxP))
	m.Ints.Get(status.KeyMaxConnections).Store(int64(maxC))
	// Every connection particle scans every particle
	m.Ints.Get(status.KeyOpsPerFrame).Store(int64(f.Len() * f.Connections()))

	actual, target := f.RadiusProduct()
	m.Floats.Get(status.KeyWorldSpeed).Set(f.WorldSpeed())
	m.Floats.Get(status.KeyWorldTarget).Set(sim.WorldSpeed)
	m.Floats.Get(status.KeyRadiusProduct).Set(actual)
	m.Floats.Get(status.KeyRadiusTarget).Set(target)
	m.Floats.Get(status.KeyWarpSpeed).Set(f.WarpSpeed())
	m.Floats.Get(status.KeyRotation).Set(f.Rotation())
	m.Bools.Get(status.KeyWarp).Store(sim.Warp)

	algorithm := "uniform"
	if sim.SpawnAlgorithm == config.SpawnPriority {
		algorithm = "priority"
	}
	m.Strings.Get(status.KeySpawnArea).Store(fmt.Sprintf("%d/%d of %d in r=%.0f",
		st.ConnectionsInSpawn, st.SpawnFloor, st.InSpawn, f.SpawnRadius()))
	m.Strings.Get(status.KeySpawnPath).Store(fmt.Sprintf("%s %d/%d/%d/%d",
		algorithm, st.Spawned[0], st.Spawned[1], st.Spawned[2], st.Spawned[3]))

	m.Strings.Get(status.KeyState).Store(h.sched.State().String())
	m.Ints.Get(status.KeyPolls).Store(int64(h.polls))
	m.Ints.Get(status.KeyPollErrors).Store(int64(h.sched.PollFailures()))
	if sess := h.sched.Session(); sess != nil {
		m.Ints.Get(status.KeyBeatIndex).Store(int64(sess.BeatIndex()))
		m.Ints.Get(status.KeyTatumIndex).Store(int64(sess.TatumIndex()))
		if sec, ok := sess.Section(); ok {
			m.Strings.Get(status.KeySection).Store(fmt.Sprintf("%.0fs tempo %.1f key %d loudness %.1f",
				sec.Start, sec.Tempo, sec.Key, sec.Loudness))
		}
	}
}

// drawOverlay writes now-playing, status and debug lines top-left
func (h *Host) drawOverlay(now time.Time) {
	col := h.theme.Overlay
	row := 0
	line := func(s string) {
		h.surface.Text(0, row, s, col)
		row++
	}

	for _, s := range h.NowPlaying(now) {
		line(s)
	}
	for _, s := range h.status.Lines() {
		line(s)
	}

	if h.settings.Simulation.DrawDebugText {
		w, ht := h.field.Size()
		line(fmt.Sprintf("canvas: %.0fx%.0f", w, ht))
		for _, s := range h.metrics.Lines() {
			line(s)
		}
	}
}

// NowPlaying returns the track line and the progress line, or a single idle line
func (h *Host) NowPlaying(now time.Time) []string {
	pb := h.sched.NowPlaying()
	if pb == nil {
		return []string{"No track playing"}
	}

	name := pb.Name
	if pb.Artist != "" {
		name = pb.Artist + " – " + pb.Name
	}
	progress := float64(pb.ProgressMs)
	if p, ok := h.sched.Progress(now); ok {
		progress = p
	}
	progress = min(progress, float64(pb.DurationMs))
	return []string{name, clock(progress) + " / " + clock(float64(pb.DurationMs))}
}

// clock formats milliseconds as m:ss
func clock(ms float64) string {
	s := int(max(0, ms) / 1000)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
