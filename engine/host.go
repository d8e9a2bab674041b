package engine

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/beatsync"
	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/core"
	"github.com/lixenwraith/starfield/field"
	"github.com/lixenwraith/starfield/parameter"
	"github.com/lixenwraith/starfield/render"
	"github.com/lixenwraith/starfield/status"
)

// TokenKey in a settings batch replaces the API credential instead of a tunable
const TokenKey = "spotify_token"

// TokenSetter accepts a replacement credential
type TokenSetter interface {
	Set(value string)
}

// Resizer is implemented by surfaces that track a resizable viewport
type Resizer interface {
	Resize() bool
}

// Options wires a Host, Events, Batches and Token may be nil
type Options struct {
	Surface   render.Surface
	Field     *field.Field
	Scheduler *beatsync.Scheduler
	Settings  *config.Settings
	Clock     core.Clock
	Status    *status.Log
	Metrics   *status.Registry
	Events    <-chan tcell.Event
	Batches   <-chan map[string]string
	Token     TokenSetter
	Logger    *zap.Logger

	// FrameInterval defaults to parameter.FrameUpdateInterval
	FrameInterval time.Duration
}

// Host owns every piece of core state and is the only goroutine touching it
// Frames, poll ticks, network completions, settings batches and terminal events are serialized through one select
type Host struct {
	surface  render.Surface
	field    *field.Field
	sched    *beatsync.Scheduler
	settings *config.Settings
	clock    core.Clock
	status   *status.Log
	metrics  *status.Registry
	events   <-chan tcell.Event
	batches  <-chan map[string]string
	token    TokenSetter
	log      *zap.Logger

	frameInterval time.Duration

	theme         Theme
	dark          Theme
	overlayHidden bool

	lastFrame time.Time
	fps       float64
	polls     int
	width     float64
	height    float64
}

// New creates a host, the field is sized to the surface immediately
func New(opts Options) *Host {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	st := opts.Status
	if st == nil {
		st = status.NewLog()
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = parameter.FrameUpdateInterval
	}

	h := &Host{
		surface:       opts.Surface,
		field:         opts.Field,
		sched:         opts.Scheduler,
		settings:      opts.Settings,
		clock:         opts.Clock,
		status:        st,
		metrics:       metrics,
		events:        opts.Events,
		batches:       opts.Batches,
		token:         opts.Token,
		log:           log.Named("host"),
		frameInterval: interval,
	}
	h.theme = DarkTheme(&h.settings.Simulation)
	h.Resize()
	return h
}

// Run drives the host until ctx ends or a quit key is pressed
func (h *Host) Run(ctx context.Context) error {
	frame := time.NewTicker(h.frameInterval)
	defer frame.Stop()
	poll := time.NewTimer(0)
	defer poll.Stop()

	h.lastFrame = h.clock.Now()
	batches := h.batches

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-frame.C:
			h.Frame(h.clock.Now())

		case <-poll.C:
			h.Poll()
			poll.Reset(h.sched.PollInterval())

		case c := <-h.sched.Completions():
			h.sched.Apply(c)

		case batch, ok := <-batches:
			if !ok {
				batches = nil
				continue
			}
			h.ApplySettings(batch)

		case ev := <-h.events:
			if !h.HandleEvent(ev) {
				return nil
			}
		}
	}
}

// Poll starts a playback poll, counted for the overlay
func (h *Host) Poll() {
	if h.sched.Poll() {
		h.polls++
	}
}

// Frame fires due musical events, advances and draws one frame
func (h *Host) Frame(now time.Time) {
	dt := h.frameInterval
	if !h.lastFrame.IsZero() {
		dt = now.Sub(h.lastFrame)
	}
	h.lastFrame = now

	h.sched.Frame(now)
	h.field.Advance(dt)

	h.surface.Clear(h.theme.Background)
	h.field.Draw(h.surface)
	h.publish(now, dt)
	if !h.overlayHidden {
		h.drawOverlay(now)
	}
	h.surface.Show()
}

// HandleEvent returns false when the host should quit
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.HandleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		if r, ok := h.surface.(Resizer); ok {
			r.Resize()
		}
		h.Resize()
	}
	return true
}

// HandleKey applies a key toggle, returns false on quit keys
func (h *Host) HandleKey(key tcell.Key, r rune) bool {
	sim := &h.settings.Simulation

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyF1:
		sim.DrawDebugText = !sim.DrawDebugText
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'd':
			sim.DrawDebug = !sim.DrawDebug
		case 'h':
			h.overlayHidden = !h.overlayHidden
		case 'l':
			h.ToggleTheme()
		case 'r':
			h.log.Info("manual resync requested")
			h.sched.Resync()
		}
	}
	return true
}

// ToggleTheme switches between dark and light, restoring the dark sizes on the way back
func (h *Host) ToggleTheme() {
	sim := &h.settings.Simulation
	if h.theme.Name == "light" {
		h.theme = h.dark
		sim.StarRadius = h.dark.StarRadius
		sim.LineWidth = h.dark.LineWidth
		return
	}
	h.dark = DarkTheme(sim)
	h.theme = LightTheme()
	sim.StarRadius = h.theme.StarRadius
	sim.LineWidth = h.theme.LineWidth
}

// Theme returns the active theme
func (h *Host) Theme() Theme { return h.theme }

// Resize propagates the surface size to the field when it changed
func (h *Host) Resize() {
	w, ht := h.surface.Size()
	if w == h.width && ht == h.height {
		return
	}
	h.width, h.height = w, ht
	h.field.Resize(w, ht)
	h.log.Debug("canvas resized", zap.Float64("width", w), zap.Float64("height", ht))
}

// ApplySettings applies a settings-file batch between frames
func (h *Host) ApplySettings(batch map[string]string) {
	tunables := make(map[string]string, len(batch))
	for k, v := range batch {
		if k == TokenKey {
			if h.token != nil && v != "" {
				h.token.Set(v)
				h.log.Info("credential replaced from settings file")
			}
			continue
		}
		tunables[k] = v
	}

	errs := h.settings.Apply(tunables)
	for _, err := range errs {
		h.log.Warn("setting rejected", zap.Error(err))
	}
	h.log.Info("settings reloaded", zap.Int("keys", len(tunables)), zap.Int("rejected", len(errs)))
}
