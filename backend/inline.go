package backend

import (
	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/execctx"
)

// Inline runs the cycle loop on the caller's goroutine and evaluates
// ParallelMap serially. It is the zero-dependency default, grounded on
// runtime/backends/inline.py.
type Inline struct{}

// NewInline returns an Inline backend.
func NewInline() *Inline { return &Inline{} }

// Execute implements Backend.
func (b *Inline) Execute(maxCycles int, exec CycleExecutor, snapshot Snapshot, ctx *execctx.Context) (agentcore.AgentResult, error) {
	return runLoop(maxCycles, exec, snapshot, ctx)
}

// ParallelMap implements Backend as a plain serial loop: inline.py's
// parallel_map is a list comprehension, not actually parallel.
func (b *Inline) ParallelMap(items []any, fn func(item any) (any, error)) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		res, err := fn(item)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}
