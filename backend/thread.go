package backend

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/execctx"
)

// Thread drives the same sequential cycle loop as Inline but fans
// ParallelMap out onto a fixed-size worker pool, and additionally exposes
// Submit so a whole run can execute off the caller's goroutine. Grounded
// on runtime/backends/thread.py's ThreadPoolExecutor wrapping, restyled
// after the teacher's ExecutorConfig pattern using golang.org/x/sync/errgroup
// instead of raw unbounded goroutines.
type Thread struct {
	poolSize int
}

// NewThread returns a Thread backend with the given worker pool size. A
// size of zero or less defaults to 4.
func NewThread(poolSize int) *Thread {
	if poolSize <= 0 {
		poolSize = 4
	}
	return &Thread{poolSize: poolSize}
}

// Execute implements Backend. The cycle loop itself is never parallelized —
// only parallel_map and Submit introduce concurrency.
func (b *Thread) Execute(maxCycles int, exec CycleExecutor, snapshot Snapshot, ctx *execctx.Context) (agentcore.AgentResult, error) {
	return runLoop(maxCycles, exec, snapshot, ctx)
}

// ParallelMap fans out onto the pool and joins results in input order,
// regardless of completion order.
func (b *Thread) ParallelMap(items []any, fn func(item any) (any, error)) ([]any, error) {
	out := make([]any, len(items))
	g := new(errgroup.Group)
	g.SetLimit(b.poolSize)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			res, err := fn(item)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Future resolves to the result of a Submit'd run. Get blocks until the
// run completes and returns the same result/error on every call, mirroring
// vv_agent/runtime/backends/thread.py's Future contract.
type Future struct {
	once   sync.Once
	done   chan struct{}
	result agentcore.AgentResult
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(result agentcore.AgentResult, err error) {
	f.once.Do(func() {
		f.result = result
		f.err = err
		close(f.done)
	})
}

// Get blocks until the submitted run finishes.
func (f *Future) Get() (agentcore.AgentResult, error) {
	<-f.done
	return f.result, f.err
}

// IsReady reports whether Get would return without blocking.
func (f *Future) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Submit runs fn on a new goroutine of its own (not bounded by the
// ParallelMap pool size) and returns a Future for its result, so a whole
// run can execute off the caller's goroutine.
func (b *Thread) Submit(fn func() (agentcore.AgentResult, error)) *Future {
	future := newFuture()
	go func() {
		res, err := fn()
		future.resolve(res, err)
	}()
	return future
}
