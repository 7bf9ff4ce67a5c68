// Package backend implements the two execution backends (C7) that drive
// the cycle loop: Inline (same goroutine) and Thread (pooled). Both share
// identical loop semantics — cycles remain strictly sequential within one
// run — grounded on the original implementation's
// runtime/backends/inline.py and runtime/backends/thread.py.
package backend

import (
	"fmt"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/execctx"
)

// CycleExecutor advances a run by exactly one cycle, mutating whatever
// transcript/cycle-log state it closes over (the cycle package's Runner
// owns that state; backends never see it directly). A non-nil result ends
// the loop; nil, nil means continue to the next cycle.
type CycleExecutor func(cycleIndex int) (*agentcore.AgentResult, error)

// Snapshot returns the current partial AgentResult (messages, cycles,
// shared state accumulated so far) so the backend can fill in a terminal
// status for cancellation or cycle exhaustion without needing to own the
// transcript itself.
type Snapshot func() agentcore.AgentResult

// Backend drives the cycle loop for one run and, separately, fans out
// independent work via ParallelMap. Backends never interpret tool results
// themselves — that is entirely the injected CycleExecutor's concern.
type Backend interface {
	Execute(maxCycles int, exec CycleExecutor, snapshot Snapshot, ctx *execctx.Context) (agentcore.AgentResult, error)
	ParallelMap(items []any, fn func(item any) (any, error)) ([]any, error)
}

// runLoop is the loop body shared by Inline and Thread: both backends keep
// cycles sequential within a run, so the only difference between them is
// what ParallelMap/Submit do with independent work outside that loop.
func runLoop(maxCycles int, exec CycleExecutor, snapshot Snapshot, ctx *execctx.Context) (agentcore.AgentResult, error) {
	for cycleIndex := 1; cycleIndex <= maxCycles; cycleIndex++ {
		if err := ctx.CheckCancelled(); err != nil {
			res := snapshot()
			res.Status = agentcore.StatusCancelled
			res.Error = err.Error()
			return res, nil
		}

		result, err := exec(cycleIndex)
		if err != nil {
			return agentcore.AgentResult{}, fmt.Errorf("backend: cycle %d: %w", cycleIndex, err)
		}
		if result != nil {
			return *result, nil
		}
	}

	res := snapshot()
	res.Status = agentcore.StatusMaxCycles
	res.FinalAnswer = "Reached max cycles without finish signal."
	return res, nil
}
