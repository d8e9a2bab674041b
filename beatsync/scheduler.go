package beatsync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/core"
	"github.com/lixenwraith/starfield/status"
)

// Status lines shown while establishing sync
const (
	MsgGettingAnalysis  = "Getting analysis..."
	MsgAnalysisRetrying = "Failed getting analysis, retrying..."
	MsgStillGetting     = "Still getting analysis..."
	MsgPollFailed       = "Error getting current track. Might be out of sync."
	MsgResynced         = "Successfully re-synced with the playing track."
	MsgCredential       = "Credential expired, waiting for a new token."
)

type completionKind uint8

const (
	completionPoll completionKind = iota
	completionFetchAttempt
	completionFetchFailed
	completionAnalysis
	completionStillGetting
)

// Completion is the result of background network work, applied on the scheduler goroutine
type Completion struct {
	kind        completionKind
	token       string
	requestedAt time.Time
	receivedAt  time.Time
	playback    *Playback
	analysis    *Analysis
	err         error
}

// sampledAt places a polled progress halfway through the round trip
func (c Completion) sampledAt() time.Time {
	return c.requestedAt.Add(c.receivedAt.Sub(c.requestedAt) / 2)
}

// Options wires a Scheduler
type Options struct {
	Config     *config.Sync
	Source     Source
	Credential Credential // nil means always valid
	Clock      core.Clock
	Sink       Sink
	Status     *status.Log
	Logger     *zap.Logger
}

// Scheduler maps coarse playback polls into precisely timed sink events
// Poll, Apply, Frame and Resync must be called from one goroutine, network work reports back through Completions
type Scheduler struct {
	cfg    *config.Sync
	source Source
	cred   Credential
	clock  core.Clock
	sink   Sink
	status *status.Log
	log    *zap.Logger

	root        context.Context
	completions chan Completion

	state        State
	onTransition func(from, to State)

	session  *Session
	playing  bool
	playback *Playback

	polling       bool
	pollEstimate  float64 // estimate at the instant the in-flight poll was issued
	pollHasEst    bool
	lastPolledMs  int64
	pollErrors    int
	credentialLow bool
	credentialMsg bool // credential line shown, cleared by the next good poll
}

// NewScheduler creates an Idle scheduler, root bounds every network goroutine it starts
func NewScheduler(root context.Context, opts Options) *Scheduler {
	cred := opts.Credential
	if cred == nil {
		cred = alwaysValid{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	st := opts.Status
	if st == nil {
		st = status.NewLog()
	}
	sink := opts.Sink
	if sink == nil {
		sink = Sinks(nil)
	}
	return &Scheduler{
		cfg:         opts.Config,
		source:      opts.Source,
		cred:        cred,
		clock:       opts.Clock,
		sink:        sink,
		status:      st,
		log:         log.Named("beatsync"),
		root:        root,
		completions: make(chan Completion, 16),
		state:       StateIdle,
	}
}

// OnTransition installs a hook called on every state change
func (s *Scheduler) OnTransition(fn func(from, to State)) {
	s.onTransition = fn
}

func (s *Scheduler) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.log.Debug("state transition", zap.Stringer("from", from), zap.Stringer("to", to))
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

// Completions delivers background results, feed each one to Apply
func (s *Scheduler) Completions() <-chan Completion {
	return s.completions
}

// State returns the current state
func (s *Scheduler) State() State { return s.state }

// Session returns the active session, nil before the first track
func (s *Scheduler) Session() *Session { return s.session }

// NowPlaying returns the last polled playback, nil when nothing is playing
func (s *Scheduler) NowPlaying() *Playback { return s.playback }

// PollFailures is the number of consecutive failed polls
func (s *Scheduler) PollFailures() int { return s.pollErrors }

// Progress returns the estimated progress of the active session at now
func (s *Scheduler) Progress(now time.Time) (float64, bool) {
	if s.session == nil {
		return 0, false
	}
	return s.session.Estimate.At(now), true
}

// PollInterval is the cadence the host should poll at in the current state
func (s *Scheduler) PollInterval() time.Duration {
	switch s.state {
	case StateScheduling, StatePaused:
		return s.cfg.PollInterval
	}
	return s.cfg.FastPollInterval
}

func (s *Scheduler) post(ctx context.Context, c Completion) bool {
	select {
	case s.completions <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// Poll starts a playback poll unless one is in flight or the credential is invalid
func (s *Scheduler) Poll() bool {
	if s.polling {
		return false
	}
	if !s.cred.Valid() {
		if !s.credentialLow {
			s.credentialLow = true
			s.credentialMsg = true
			s.status.Push(MsgCredential)
		}
		return false
	}
	if s.credentialLow {
		s.credentialLow = false
		s.log.Info("credential valid again, resuming polls")
	}

	now := s.clock.Now()
	s.polling = true
	s.pollHasEst = false
	if s.session != nil {
		s.pollEstimate = s.session.Estimate.At(now)
		s.pollHasEst = true
	}

	timeout := s.cfg.PollTimeoutIdle
	if s.playback != nil {
		timeout = s.cfg.PollTimeoutTracked
	}

	root := s.root
	core.Go(func() {
		ctx, cancel := context.WithTimeout(root, timeout)
		defer cancel()
		pb, err := s.source.PollPlayback(ctx)
		s.post(root, Completion{
			kind:        completionPoll,
			requestedAt: now,
			receivedAt:  s.clock.Now(),
			playback:    pb,
			err:         err,
		})
	})
	return true
}

// Apply folds one background result into scheduler state
func (s *Scheduler) Apply(c Completion) {
	switch c.kind {
	case completionPoll:
		s.applyPoll(c)
	case completionFetchAttempt:
		if s.current(c.token) {
			s.status.Push(MsgGettingAnalysis)
		}
	case completionStillGetting:
		if s.current(c.token) {
			s.status.Push(MsgStillGetting)
		}
	case completionFetchFailed:
		if s.current(c.token) {
			s.log.Warn("analysis fetch failed", zap.Error(c.err))
			s.status.Push(MsgAnalysisRetrying)
		}
	case completionAnalysis:
		s.applyAnalysis(c)
	}
}

// current reports whether token belongs to the live session
func (s *Scheduler) current(token string) bool {
	return s.session != nil && s.session.Token == token && !s.session.Stale()
}

func (s *Scheduler) applyPoll(c Completion) {
	s.polling = false

	if c.err != nil {
		if errors.Is(c.err, ErrCredentialExpired) {
			s.log.Error("credential expired, polling halted", zap.Error(c.err))
			s.credentialLow = true
			s.credentialMsg = true
			s.status.Push(MsgCredential)
			return
		}
		s.pollErrors++
		s.log.Warn("playback poll failed", zap.Error(&PollError{Err: c.err}))
		s.status.Push(MsgPollFailed)
		return
	}

	pb := c.playback
	s.playback = pb
	if pb == nil {
		// Nothing playing pauses the session, it does not end it
		s.setPlaying(false, c)
		s.recovered(c.receivedAt)
		return
	}

	polled := float64(pb.ProgressMs)
	switch {
	case s.session == nil || pb.TrackID != s.session.TrackID:
		s.log.Info("track changed", zap.String("track", pb.TrackID), zap.String("name", pb.Name))
		s.startSession(pb, c.sampledAt())
	case s.seeked(polled):
		s.log.Info("playback position jumped, resyncing",
			zap.Float64("polled_ms", polled), zap.Float64("estimate_ms", s.pollEstimate))
		s.resync(polled, c.sampledAt(), pb.IsPlaying)
	case s.pollHasEst && polled > s.pollEstimate:
		// Small forward drift re-anchors, the estimate never moves backward
		s.session.Estimate.Anchor(polled, c.sampledAt(), s.session.Estimate.Paused)
	}

	if pb.IsPlaying {
		if seeder, ok := s.sink.(Seeder); ok {
			seeder.Seed()
		}
	}
	s.setPlaying(pb.IsPlaying, c)

	s.lastPolledMs = pb.ProgressMs
	s.recovered(c.receivedAt)
}

// seeked compares the polled progress with the estimate taken when the poll was issued
func (s *Scheduler) seeked(polledMs float64) bool {
	if !s.pollHasEst {
		return polledMs < float64(s.lastPolledMs)
	}
	back := float64(s.cfg.BackwardSeekTolerance) / float64(time.Millisecond)
	fwd := float64(s.cfg.ForwardDriftTolerance) / float64(time.Millisecond)
	return polledMs < s.pollEstimate-back || polledMs > s.pollEstimate+fwd
}

// setPlaying applies play/pause from the freshest poll
func (s *Scheduler) setPlaying(playing bool, c Completion) {
	was := s.playing
	s.playing = playing
	sess := s.session
	if sess == nil {
		return
	}

	if was == playing {
		return
	}

	if playing {
		// Resume anchors on the poll, wall time spent paused is not progress
		if c.playback != nil {
			sess.Estimate.Anchor(float64(c.playback.ProgressMs), c.sampledAt(), false)
		} else {
			sess.Estimate.Anchor(sess.Estimate.ProgressMs, c.receivedAt, false)
		}
		if s.state == StatePaused {
			s.setState(StateScheduling)
		}
		return
	}

	frozen := sess.Estimate.At(c.receivedAt)
	if c.playback != nil {
		frozen = float64(c.playback.ProgressMs)
	}
	sess.Estimate.Anchor(frozen, c.receivedAt, true)
	if s.state == StateScheduling {
		s.setState(StatePaused)
	}
}

// recovered acknowledges a good poll after failures and clears the status log shortly after
func (s *Scheduler) recovered(now time.Time) {
	if s.pollErrors == 0 && !s.credentialMsg {
		return
	}
	s.pollErrors = 0
	s.credentialMsg = false
	s.status.Push(MsgResynced)
	s.status.ClearAfter(now, s.cfg.StatusClearDelay)
}

func (s *Scheduler) replaceSession(trackID string) *Session {
	if s.session != nil {
		s.session.cancel()
	}
	s.session = newSession(s.root, trackID)
	return s.session
}

// startSession abandons the previous track and fetches analysis for pb
func (s *Scheduler) startSession(pb *Playback, at time.Time) {
	sess := s.replaceSession(pb.TrackID)
	sess.Estimate.Anchor(float64(pb.ProgressMs), at, !pb.IsPlaying)
	s.playing = pb.IsPlaying
	s.setState(StateFetchingAnalysis)
	s.fetch(sess)
}

// resync resets cursors for the current track, reusing held analysis
func (s *Scheduler) resync(progressMs float64, at time.Time, playing bool) {
	prev := s.session
	s.setState(StateResyncing)

	sess := s.replaceSession(prev.TrackID)
	sess.Estimate.Anchor(progressMs, at, !playing)
	s.playing = playing

	if prev.analysis == nil {
		s.setState(StateFetchingAnalysis)
		s.fetch(sess)
		return
	}

	sess.load(prev.analysis, s.cfg, progressMs)
	s.enterScheduling()
}

// Resync forces a resync of the current track from the current estimate
func (s *Scheduler) Resync() {
	if s.session == nil {
		return
	}
	now := s.clock.Now()
	s.resync(s.session.Estimate.At(now), now, s.playing)
}

func (s *Scheduler) enterScheduling() {
	if s.playing {
		s.setState(StateScheduling)
	} else {
		s.setState(StatePaused)
	}
}

func (s *Scheduler) applyAnalysis(c Completion) {
	if !s.current(c.token) {
		s.log.Debug("dropping stale analysis", zap.String("token", c.token))
		return
	}
	sess := s.session
	if sess.Ready() {
		return
	}

	// The estimate kept running during the fetch, so the cursor position includes its latency
	progress := sess.Estimate.At(c.receivedAt)
	sess.load(c.analysis.sorted(), s.cfg, progress)
	s.status.Clear()

	s.log.Info("analysis loaded",
		zap.String("track", sess.TrackID),
		zap.Int("beats", len(sess.beats)),
		zap.Int("tatums", len(sess.tatums)),
		zap.Float64("progress_ms", progress))
	s.enterScheduling()
}

// fetch retries the analysis request until it succeeds or the session is superseded
func (s *Scheduler) fetch(sess *Session) {
	ctx := sess.ctx
	token := sess.Token
	trackID := sess.TrackID
	retry := s.cfg.AnalysisRetryDelay
	still := max(s.cfg.StillGettingInterval, time.Millisecond)
	done := make(chan struct{})

	core.Go(func() {
		t := time.NewTicker(still)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.post(ctx, Completion{kind: completionStillGetting, token: token})
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	})

	core.Go(func() {
		defer close(done)
		for attempt := 1; ; attempt++ {
			if !s.cred.Valid() {
				if !wait(ctx, retry) {
					return
				}
				attempt--
				continue
			}

			if !s.post(ctx, Completion{kind: completionFetchAttempt, token: token}) {
				return
			}
			a, err := s.source.FetchAnalysis(ctx, trackID)
			if ctx.Err() != nil {
				return
			}
			if err == nil && a != nil {
				s.post(ctx, Completion{
					kind:       completionAnalysis,
					token:      token,
					receivedAt: s.clock.Now(),
					analysis:   a,
				})
				return
			}
			if err == nil {
				err = errors.New("empty analysis")
			}
			s.post(ctx, Completion{
				kind:  completionFetchFailed,
				token: token,
				err:   &AnalysisError{TrackID: trackID, Attempt: attempt, Err: err},
			})
			if !wait(ctx, retry) {
				return
			}
		}
	})
}

// wait sleeps for d unless ctx ends first
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Frame evaluates pending events at now, a no-op unless Scheduling with analysis loaded
func (s *Scheduler) Frame(now time.Time) {
	s.status.Tick(now)

	sess := s.session
	if s.state != StateScheduling || sess == nil || sess.Stale() || !sess.Ready() {
		return
	}
	sess.advance(sess.Estimate.At(now), s.sink)
}
