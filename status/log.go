package status

import (
	"sync"
	"time"
)

// Log accumulates human-readable status lines shown in the overlay
// A delayed clear only fires if nothing was pushed after it was scheduled
type Log struct {
	mu       sync.Mutex
	lines    []string
	pushes   uint64
	clearAt  time.Time
	clearGen uint64
}

// NewLog creates an empty status log
func NewLog() *Log {
	return &Log{}
}

// Push appends a line and cancels any pending delayed clear
func (l *Log) Push(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	l.pushes++
	l.clearAt = time.Time{}
}

// Clear drops every line immediately
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.clearAt = time.Time{}
}

// ClearAfter schedules a clear at now+d, Tick performs it
func (l *Log) ClearAfter(now time.Time, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearAt = now.Add(d)
	l.clearGen = l.pushes
}

// Tick performs a due delayed clear, returns true if the log was cleared
func (l *Log) Tick(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.clearAt.IsZero() || now.Before(l.clearAt) {
		return false
	}
	l.clearAt = time.Time{}
	if l.clearGen != l.pushes {
		return false
	}
	l.lines = nil
	return true
}

// Len returns the number of held lines
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Lines returns a copy of the held lines, oldest first
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
