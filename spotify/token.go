package spotify

import "sync"

// Token holds the bearer credential shared by every request goroutine
// An invalidated token stays invalid until Set supplies a new value
type Token struct {
	mu      sync.RWMutex
	value   string
	expired bool
}

// NewToken wraps an access token, an empty value starts invalid
func NewToken(value string) *Token {
	return &Token{value: value}
}

// Value returns the current bearer value
func (t *Token) Value() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Valid reports whether requests may be issued
func (t *Token) Valid() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value != "" && !t.expired
}

// Set installs a fresh token and clears expiry
func (t *Token) Set(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
	t.expired = false
}

// Invalidate marks the token expired after the API rejected it
func (t *Token) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expired = true
}
