package diag

import "sync/atomic"

// Token is a resettable, checkable cancellation flag shared across one
// in-flight refresh lifecycle. Cancellation is cooperative: consumers poll it
// between externally visible steps, it never interrupts in-flight I/O. A
// cancelled cycle must produce no observable effect.
type Token struct {
	cancelled atomic.Bool
}

// NewToken returns an active token.
func NewToken() *Token { return &Token{} }

// Cancel marks the token cancel-requested. Idempotent.
func (t *Token) Cancel() { t.cancelled.Store(true) }

// Reset clears the flag back to active, establishing a new lifecycle.
func (t *Token) Reset() { t.cancelled.Store(false) }

// Cancelled is a non-blocking read of the flag.
func (t *Token) Cancelled() bool { return t.cancelled.Load() }
