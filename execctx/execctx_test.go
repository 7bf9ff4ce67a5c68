package execctx

import (
	"testing"

	"github.com/haasonsaas/agentcore/token"
)

func TestCheckCancelledWithNilToken(t *testing.T) {
	ctx := New(nil, nil, nil)
	if err := ctx.CheckCancelled(); err != nil {
		t.Fatalf("expected nil-token context to never report cancellation, got %v", err)
	}
}

func TestCheckCancelledDelegatesToToken(t *testing.T) {
	tok := token.New()
	ctx := New(tok, nil, nil)

	if err := ctx.CheckCancelled(); err != nil {
		t.Fatalf("expected no error before cancel, got %v", err)
	}

	tok.Cancel("stop")
	if err := ctx.CheckCancelled(); err == nil {
		t.Fatal("expected error after token cancellation")
	}
}

func TestEmitForwardsToStream(t *testing.T) {
	var got []string
	ctx := New(nil, func(chunk string) { got = append(got, chunk) }, nil)

	ctx.Emit("hello")
	ctx.Emit(" world")

	if len(got) != 2 || got[0] != "hello" || got[1] != " world" {
		t.Fatalf("expected chunks to be forwarded in order, got %v", got)
	}
}

func TestEmitWithNilStreamDoesNotPanic(t *testing.T) {
	ctx := New(nil, nil, nil)
	ctx.Emit("ignored")
}
