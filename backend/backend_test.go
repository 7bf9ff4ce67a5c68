package backend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/execctx"
	"github.com/haasonsaas/agentcore/token"
)

func snapshotOf(messages []agentcore.Message) Snapshot {
	return func() agentcore.AgentResult {
		return agentcore.AgentResult{Messages: messages}
	}
}

func TestInlineExecuteStopsOnTerminalResult(t *testing.T) {
	b := NewInline()
	calls := 0
	exec := func(cycleIndex int) (*agentcore.AgentResult, error) {
		calls++
		if cycleIndex == 2 {
			return &agentcore.AgentResult{Status: agentcore.StatusCompleted, FinalAnswer: "done"}, nil
		}
		return nil, nil
	}
	res, err := b.Execute(10, exec, snapshotOf(nil), execctx.New(nil, nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != agentcore.StatusCompleted || res.FinalAnswer != "done" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 cycle invocations, got %d", calls)
	}
}

func TestInlineExecuteExhaustsMaxCycles(t *testing.T) {
	b := NewInline()
	exec := func(cycleIndex int) (*agentcore.AgentResult, error) { return nil, nil }
	res, err := b.Execute(3, exec, snapshotOf(nil), execctx.New(nil, nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != agentcore.StatusMaxCycles {
		t.Fatalf("expected MAX_CYCLES, got %v", res.Status)
	}
}

func TestInlineExecuteRespectsCancellationBeforeFirstCycle(t *testing.T) {
	b := NewInline()
	tok := token.New()
	tok.Cancel("stopped early")
	ctx := execctx.New(tok, nil, nil)

	calls := 0
	exec := func(cycleIndex int) (*agentcore.AgentResult, error) {
		calls++
		return nil, nil
	}
	res, err := b.Execute(5, exec, snapshotOf(nil), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != agentcore.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %v", res.Status)
	}
	if calls != 0 {
		t.Fatalf("expected zero cycles executed, got %d", calls)
	}
}

func TestInlineParallelMapPreservesOrder(t *testing.T) {
	b := NewInline()
	items := []any{3, 1, 2}
	out, err := b.ParallelMap(items, func(item any) (any, error) {
		return item.(int) * 10, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{30, 10, 20}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}

func TestThreadParallelMapPreservesInputOrder(t *testing.T) {
	b := NewThread(4)
	items := []any{5, 4, 3, 2, 1}
	out, err := b.ParallelMap(items, func(item any) (any, error) {
		return item.(int) * item.(int), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{25, 16, 9, 4, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}

func TestThreadParallelMapPropagatesError(t *testing.T) {
	b := NewThread(2)
	boom := errors.New("boom")
	_, err := b.ParallelMap([]any{1, 2, 3}, func(item any) (any, error) {
		if item.(int) == 2 {
			return nil, boom
		}
		return item, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
}

func TestThreadSubmitFutureResolvesOnce(t *testing.T) {
	b := NewThread(2)
	future := b.Submit(func() (agentcore.AgentResult, error) {
		return agentcore.AgentResult{Status: agentcore.StatusCompleted, FinalAnswer: "x"}, nil
	})

	res1, err1 := future.Get()
	res2, err2 := future.Get()
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if !reflect.DeepEqual(res1, res2) {
		t.Fatalf("expected repeated Get to return identical result, got %+v vs %+v", res1, res2)
	}
}
