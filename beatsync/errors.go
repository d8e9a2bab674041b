package beatsync

import (
	"errors"
	"fmt"
)

// ErrCredentialExpired halts polling and fetching until the credential is valid again
var ErrCredentialExpired = errors.New("credential expired")

// PollError is a transient playback poll failure, the next interval retries
type PollError struct {
	Err error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll playback: %v", e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// AnalysisError is a transient analysis fetch failure, the fetch retries indefinitely
type AnalysisError struct {
	TrackID string
	Attempt int
	Err     error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("fetch analysis %s (attempt %d): %v", e.TrackID, e.Attempt, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
