package llmclient

import (
	"context"
	"testing"
)

func TestScriptedReturnsTurnsInOrder(t *testing.T) {
	c := NewScripted(
		ScriptedTurn{Response: Response{Content: "first"}},
		ScriptedTurn{Response: Response{Content: "second"}},
	)

	r1, err := c.Complete(context.Background(), "m", nil, nil, nil)
	if err != nil || r1.Content != "first" {
		t.Fatalf("expected first turn, got %+v %v", r1, err)
	}
	r2, err := c.Complete(context.Background(), "m", nil, nil, nil)
	if err != nil || r2.Content != "second" {
		t.Fatalf("expected second turn, got %+v %v", r2, err)
	}
}

func TestScriptedStreamsChunksInOrder(t *testing.T) {
	c := NewScripted(ScriptedTurn{
		Chunks:   []string{"he", "llo"},
		Response: Response{Content: "hello"},
	})

	var got []string
	_, err := c.Complete(context.Background(), "m", nil, nil, func(chunk string) { got = append(got, chunk) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "he" || got[1] != "llo" {
		t.Fatalf("expected chunks in wire order, got %v", got)
	}
}

func TestScriptedExhaustionReturnsError(t *testing.T) {
	c := NewScripted(ScriptedTurn{Response: Response{Content: "only"}})
	if _, err := c.Complete(context.Background(), "m", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if _, err := c.Complete(context.Background(), "m", nil, nil, nil); err == nil {
		t.Fatal("expected error once the scripted queue is exhausted")
	}
}
