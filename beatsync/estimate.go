package beatsync

import "time"

// PlaybackEstimate extrapolates track progress from the last anchor
type PlaybackEstimate struct {
	ProgressMs float64
	SyncedAt   time.Time
	Paused     bool
}

// At returns the estimated progress in milliseconds at t
func (e PlaybackEstimate) At(t time.Time) float64 {
	if e.Paused {
		return e.ProgressMs
	}
	return e.ProgressMs + float64(t.Sub(e.SyncedAt))/float64(time.Millisecond)
}

// Anchor resets the estimate to progressMs observed at t
func (e *PlaybackEstimate) Anchor(progressMs float64, at time.Time, paused bool) {
	e.ProgressMs = progressMs
	e.SyncedAt = at
	e.Paused = paused
}
