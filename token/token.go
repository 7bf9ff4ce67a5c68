// Package token implements the engine's cancellation primitive: a
// thread-safe, one-shot flag with parent→child propagation and
// registration-order callbacks.
//
// The algorithm is grounded directly on the original implementation's
// runtime/cancellation.py: a latched boolean guarded by a mutex, a callback
// list invoked outside the lock on cancel, and a child token whose
// cancellation the parent triggers (never the reverse).
package token

import (
	"fmt"
	"sync"

	"github.com/haasonsaas/agentcore"
)

// Token is a cancellation flag shared across the goroutines cooperating on
// one run. The zero value is not usable; construct with New.
type Token struct {
	mu        sync.Mutex
	cancelled bool
	reason    string
	callbacks []func()
}

// New returns an uncancelled token with no registered callbacks.
func New() *Token {
	return &Token{}
}

// Cancelled reports whether Cancel has been called. It is safe to call
// concurrently with Cancel and OnCancel.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Cancel latches the token and invokes every registered callback in
// registration order. It is idempotent: calling it more than once has no
// further effect. Callbacks are snapshotted under the lock and invoked
// outside it, so a callback that registers another callback (e.g. a
// grandchild token) cannot deadlock against Cancel.
func (t *Token) Cancel(reason string) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	if reason != "" {
		t.reason = reason
	}
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// Reason returns the string passed to Cancel, or "" if not yet cancelled or
// no reason was given.
func (t *Token) Reason() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Check returns nil until the token is cancelled. After that it returns
// agentcore.ErrCancelled, wrapped with the cancel reason appended when one
// was given, so errors.Is(err, agentcore.ErrCancelled) holds either way.
func (t *Token) Check() error {
	if t.Cancelled() {
		if r := t.Reason(); r != "" {
			return fmt.Errorf("%w: %s", agentcore.ErrCancelled, r)
		}
		return agentcore.ErrCancelled
	}
	return nil
}

// OnCancel registers cb to run when the token is cancelled. If the token is
// already cancelled, cb fires immediately, synchronously, before OnCancel
// returns — matching the "callbacks registered after cancel fire
// immediately on registration" requirement.
func (t *Token) OnCancel(cb func()) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		cb()
		return
	}
	t.callbacks = append(t.callbacks, cb)
	t.mu.Unlock()
}

// Child returns a new token whose cancellation is triggered by this one: the
// parent registers child.Cancel as an on-cancel callback on itself.
// Cancelling the child does not propagate back to the parent — the relation
// is "parent notifies child", not shared ownership, so no reference from
// child to parent is kept.
func (t *Token) Child() *Token {
	child := New()
	t.OnCancel(func() {
		child.Cancel(t.Reason())
	})
	return child
}
