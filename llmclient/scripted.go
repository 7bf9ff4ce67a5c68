package llmclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/tools"
)

// Scripted is a deterministic, queue-driven Client used by the engine's
// own test suite: each call to Complete pops the next queued Response (or
// error) in order. It is not test-only by package boundary — callers that
// want a hermetic demo without a real API key can use it too.
type Scripted struct {
	mu        sync.Mutex
	responses []ScriptedTurn
	calls     int
}

// ScriptedTurn is one canned Complete outcome, optionally emitted as
// streamed chunks before the response is returned.
type ScriptedTurn struct {
	Chunks   []string
	Response Response
	Err      error
}

// NewScripted returns a Scripted client that will answer with turns in
// order, one per Complete call.
func NewScripted(turns ...ScriptedTurn) *Scripted {
	return &Scripted{responses: turns}
}

// Complete implements Client. It panics via a returned error, not an actual
// panic, once the queue is exhausted — a test that calls Complete more
// times than it scripted has a bug worth surfacing loudly.
func (s *Scripted) Complete(_ context.Context, _ string, _ []agentcore.Message, _ []tools.OpenAITool, stream StreamFunc) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.responses) {
		return Response{}, fmt.Errorf("llmclient: scripted client exhausted after %d calls", s.calls)
	}
	turn := s.responses[s.calls]
	s.calls++

	if stream != nil {
		for _, chunk := range turn.Chunks {
			stream(chunk)
		}
	}
	return turn.Response, turn.Err
}

// CallCount reports how many Complete calls have been made so far.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
