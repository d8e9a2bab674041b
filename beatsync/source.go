package beatsync

import "context"

// Source is the remote playback and analysis collaborator
type Source interface {
	// PollPlayback returns nil, nil when nothing is playing
	PollPlayback(ctx context.Context) (*Playback, error)
	// FetchAnalysis may take arbitrarily long, the caller retries on failure
	FetchAnalysis(ctx context.Context, trackID string) (*Analysis, error)
}

// Credential reports whether requests may be issued
type Credential interface {
	Valid() bool
}

type alwaysValid struct{}

func (alwaysValid) Valid() bool { return true }
