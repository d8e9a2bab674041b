package beatsync

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lixenwraith/starfield/config"
)

// Session is the cursor state for one track sync, replaced wholesale on track change or resync
type Session struct {
	Token   string
	TrackID string

	ctx    context.Context
	cancel context.CancelFunc

	Estimate PlaybackEstimate

	analysis *Analysis
	beats    []Beat
	tatums   []Tatum

	beatIndex  int
	tatumIndex int
	segment    int // -1 until the first eligible segment
	section    int
}

func newSession(parent context.Context, trackID string) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		Token:   uuid.New().String(),
		TrackID: trackID,
		ctx:     ctx,
		cancel:  cancel,
		segment: -1,
		section: -1,
	}
}

// Stale reports whether the session was superseded
func (s *Session) Stale() bool {
	return s.ctx.Err() != nil
}

// Ready reports whether analysis is loaded
func (s *Session) Ready() bool {
	return s.analysis != nil
}

// load filters the analysis and places cursors at progressMs
func (s *Session) load(a *Analysis, cfg *config.Sync, progressMs float64) {
	s.analysis = a
	s.beats = FilterBeats(a.Beats, cfg.BeatMinConfidence)
	s.tatums = FilterTatums(a.Tatums, cfg.TatumMinConfidence)

	s.beatIndex = cursorAt(s.beats, func(b Beat) float64 { return b.Start }, progressMs, cfg.RestartCursorWhenPastEnd)
	s.tatumIndex = cursorAt(s.tatums, func(t Tatum) float64 { return t.Start }, progressMs, cfg.RestartCursorWhenPastEnd)
	s.segment = -1
	s.section = -1
}

// cursorAt returns the first entry at or after progressMs, past the end it restarts at 0 or parks at len
func cursorAt[T any](items []T, start func(T) float64, progressMs float64, restart bool) int {
	_, idx, ok := lo.FindIndexOf(items, func(it T) bool {
		return start(it)*1000 >= progressMs
	})
	if ok {
		return idx
	}
	if restart {
		return 0
	}
	return len(items)
}

// latestEligible returns the index of the last entry starting at or before progressMs, -1 if none
func latestEligible(n int, start func(int) float64, progressMs float64) int {
	return sort.Search(n, func(i int) bool { return start(i)*1000 > progressMs }) - 1
}

// advance fires at most one beat and one tatum, then any segment and section change
func (s *Session) advance(progressMs float64, sink Sink) {
	if s.beatIndex < len(s.beats) && progressMs >= s.beats[s.beatIndex].Start*1000 {
		b := s.beats[s.beatIndex]
		s.beatIndex++
		sink.OnBeat(b)
	}

	if s.tatumIndex < len(s.tatums) && progressMs >= s.tatums[s.tatumIndex].Start*1000 {
		t := s.tatums[s.tatumIndex]
		s.tatumIndex++
		sink.OnTatum(t)
	}

	segs := s.analysis.Segments
	if i := latestEligible(len(segs), func(i int) float64 { return segs[i].Start }, progressMs); i >= 0 {
		if s.segment < 0 || segs[i].Start > segs[s.segment].Start {
			s.segment = i
			sink.OnSegment(segs[i])
		}
	}

	secs := s.analysis.Sections
	if i := latestEligible(len(secs), func(i int) float64 { return secs[i].Start }, progressMs); i >= 0 {
		if s.section < 0 || secs[i].Start > secs[s.section].Start {
			s.section = i
			sink.OnSection(secs[i])
		}
	}
}

// BeatIndex is the next pending beat in the filtered sequence
func (s *Session) BeatIndex() int { return s.beatIndex }

// TatumIndex is the next pending tatum in the filtered sequence
func (s *Session) TatumIndex() int { return s.tatumIndex }

// Beats returns the filtered beats
func (s *Session) Beats() []Beat { return s.beats }

// Tatums returns the filtered tatums
func (s *Session) Tatums() []Tatum { return s.tatums }

// Section returns the currently held section
func (s *Session) Section() (Section, bool) {
	if s.section < 0 {
		return Section{}, false
	}
	return s.analysis.Sections[s.section], true
}

// Segment returns the currently held segment
func (s *Session) Segment() (Segment, bool) {
	if s.segment < 0 {
		return Segment{}, false
	}
	return s.analysis.Segments[s.segment], true
}
