package token

import (
	"errors"
	"sync"
	"testing"

	"github.com/haasonsaas/agentcore"
)

func TestTokenCancelIsIdempotent(t *testing.T) {
	tok := New()
	calls := 0
	tok.OnCancel(func() { calls++ })

	tok.Cancel("first")
	tok.Cancel("second")

	if calls != 1 {
		t.Fatalf("expected callback to fire once, got %d", calls)
	}
	if got := tok.Reason(); got != "first" {
		t.Fatalf("expected reason %q to stick, got %q", "first", got)
	}
}

func TestTokenCheckReturnsCancelled(t *testing.T) {
	tok := New()
	if err := tok.Check(); err != nil {
		t.Fatalf("expected nil error before cancel, got %v", err)
	}

	tok.Cancel("")
	err := tok.Check()
	if !errors.Is(err, agentcore.ErrCancelled) {
		t.Fatalf("expected errors.Is match against ErrCancelled, got %v", err)
	}
}

func TestOnCancelFiresImmediatelyIfAlreadyCancelled(t *testing.T) {
	tok := New()
	tok.Cancel("boom")

	fired := false
	tok.OnCancel(func() { fired = true })

	if !fired {
		t.Fatal("expected callback registered post-cancel to fire immediately")
	}
}

func TestOnCancelRegistrationOrder(t *testing.T) {
	tok := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		tok.OnCancel(func() { order = append(order, i) })
	}
	tok.Cancel("")

	for i, v := range order {
		if v != i {
			t.Fatalf("expected registration order %v, got %v", []int{0, 1, 2, 3, 4}, order)
		}
	}
}

func TestChildCancelledByParent(t *testing.T) {
	parent := New()
	child := parent.Child()

	if child.Cancelled() {
		t.Fatal("child should start uncancelled")
	}

	parent.Cancel("parent reason")

	if !child.Cancelled() {
		t.Fatal("expected parent cancellation to propagate to child")
	}
	if got := child.Reason(); got != "parent reason" {
		t.Fatalf("expected child to inherit parent's reason, got %q", got)
	}
}

func TestChildCancelDoesNotPropagateToParent(t *testing.T) {
	parent := New()
	child := parent.Child()

	child.Cancel("child reason")

	if parent.Cancelled() {
		t.Fatal("cancelling a child must not cancel the parent")
	}
}

func TestTokenConcurrentCancelAndCheck(t *testing.T) {
	tok := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = tok.Check()
		}()
		go func() {
			defer wg.Done()
			tok.Cancel("race")
		}()
	}
	wg.Wait()

	if !tok.Cancelled() {
		t.Fatal("expected token to end up cancelled")
	}
}
