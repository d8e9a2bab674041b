package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/starfield/beatsync"
)

const (
	sampleRate = beep.SampleRate(48000)

	clickLength   = 40 * time.Millisecond
	clickFreq     = 1000.0
	accentFreq    = 1600.0
	clickDecay    = 120.0 // envelope falloff per second
	clickMaxLevel = 0.3
)

// Clicker ticks on every fired beat, a higher accent marks section changes
// Safe to use uninitialized, every event is then a no-op
type Clicker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	clicks      int
}

// NewClicker creates an uninitialized clicker
func NewClicker() *Clicker {
	return &Clicker{
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker
func (c *Clicker) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Cleanup silences pending clicks
func (c *Clicker) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// Clicks returns how many clicks were queued
func (c *Clicker) Clicks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clicks
}

func (c *Clicker) play(freq, level float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	c.clicks++
	streamer := beep.Take(sampleRate.N(clickLength), NewClickGenerator(sampleRate, freq, level))
	speaker.Lock()
	c.mixer.Add(streamer)
	speaker.Unlock()
}

// OnBeat clicks louder for more confident beats
func (c *Clicker) OnBeat(b beatsync.Beat) {
	c.play(clickFreq, clickMaxLevel*math.Min(1, math.Max(0.2, b.Confidence)))
}

func (c *Clicker) OnTatum(beatsync.Tatum) {}

func (c *Clicker) OnSegment(beatsync.Segment) {}

func (c *Clicker) OnSection(beatsync.Section) {
	c.play(accentFreq, clickMaxLevel)
}

// ClickGenerator is a sine burst with an exponential decay
type ClickGenerator struct {
	sr    beep.SampleRate
	freq  float64
	level float64
	pos   int
}

// NewClickGenerator creates a click at freq Hz starting at level
func NewClickGenerator(sr beep.SampleRate, freq, level float64) *ClickGenerator {
	return &ClickGenerator{
		sr:    sr,
		freq:  freq,
		level: level,
	}
}

func (g *ClickGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		sample := g.level * math.Exp(-clickDecay*t) * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ClickGenerator) Err() error {
	return nil
}
