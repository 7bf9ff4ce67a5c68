// Package execctx carries the per-run values that flow through the cycle
// runner, tool dispatcher, and LLM client: a cancellation token, a
// streaming sink, a state store handle, and free-form metadata.
//
// Grounded on the original implementation's runtime/context.py
// ExecutionContext dataclass; StreamFunc and StateStore are declared here
// rather than imported from the store package to avoid a dependency cycle
// (store implementations depend on agentcore, not on execctx).
package execctx

import (
	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/token"
)

// StreamFunc receives incremental text chunks from an in-flight LLM call,
// in wire order. Implementations must not block; there is no backpressure.
type StreamFunc func(chunk string)

// StateStore is the minimal checkpoint persistence contract an execution
// context needs to carry; see the store package for concrete
// implementations (store.Memory, store.SQLite, store.Postgres).
type StateStore interface {
	SaveCheckpoint(checkpoint agentcore.Checkpoint) error
	LoadCheckpoint(taskID string) (agentcore.Checkpoint, bool, error)
	DeleteCheckpoint(taskID string) error
	ListCheckpoints() ([]string, error)
}

// Context is immutable except for Metadata, which callers may add to
// during a run (e.g. a hook stashing a correlation id). It is passed by
// reference through the cycle runner, tool context, and LLM client, and
// must not outlive the call that received it.
type Context struct {
	Token      *token.Token
	Stream     StreamFunc
	Store      StateStore
	Metadata   map[string]any
}

// New builds a Context. tok, stream, and store may all be nil; CheckCancelled
// treats a nil Token as never-cancelled.
func New(tok *token.Token, stream StreamFunc, store StateStore) *Context {
	return &Context{
		Token:    tok,
		Stream:   stream,
		Store:    store,
		Metadata: make(map[string]any),
	}
}

// CheckCancelled delegates to the token, if any. A Context with no token
// never reports cancellation.
func (c *Context) CheckCancelled() error {
	if c == nil || c.Token == nil {
		return nil
	}
	return c.Token.Check()
}

// Emit forwards a chunk to the stream sink, if one is configured.
func (c *Context) Emit(chunk string) {
	if c == nil || c.Stream == nil {
		return
	}
	c.Stream(chunk)
}
