// Package memory implements the boundary-aware transcript summarizer
// (C5), grounded directly on the original implementation's
// memory/manager.py MemoryManager.compact algorithm.
package memory

import (
	"fmt"
	"strings"

	"github.com/haasonsaas/agentcore"
)

// maxSummaryLines and maxLineChars bound the synthetic summary body, per
// spec.md §4.5 step 7: "first min(40, |middle|) middle messages", each
// truncated to 120 chars.
const (
	maxSummaryLines = 40
	maxLineChars    = 120
)

// Compactor applies threshold-triggered summarization to a transcript.
// ThresholdChars and KeepRecentMessages default to 24000 and 10
// respectively, matching memory/manager.py's MemoryManager defaults.
type Compactor struct {
	ThresholdChars   int
	KeepRecentMessages int
}

// NewCompactor returns a Compactor with the spec's stated defaults.
func NewCompactor() *Compactor {
	return &Compactor{ThresholdChars: 24_000, KeepRecentMessages: 10}
}

// Compact returns a possibly-rewritten transcript and whether compaction
// occurred. The algorithm:
//
//  1. Drop any prior summary message (role=system, name=memory_summary).
//  2. If the cleaned transcript's total content length is within budget,
//     or too short to compact safely, return it unchanged.
//  3. Otherwise keep the head (system prompt), summarize a middle span,
//     and keep a recent tail — fixed up so the tail never begins with a
//     dangling tool-result message.
func (c *Compactor) Compact(messages []agentcore.Message) ([]agentcore.Message, bool) {
	if len(messages) == 0 {
		return messages, false
	}

	cleaned := dropPriorSummary(messages)

	total := 0
	for _, m := range cleaned {
		total += len(m.Content)
	}
	if total <= c.ThresholdChars {
		return cleaned, false
	}
	if len(cleaned) < c.KeepRecentMessages+2 {
		return cleaned, false
	}

	head := cleaned[0]
	recentStart := len(cleaned) - c.KeepRecentMessages
	if recentStart < 1 {
		recentStart = 1
	}

	// Boundary fix-up: never let the recent tail start with a tool-result
	// message, since a transcript beginning with a dangling tool result is
	// rejected by OpenAI-compatible providers.
	for recentStart > 1 && cleaned[recentStart].Role == agentcore.RoleTool {
		recentStart--
	}

	middle := cleaned[1:recentStart]
	recent := cleaned[recentStart:]

	summary := agentcore.Message{
		Role:    agentcore.RoleSystem,
		Name:    agentcore.MemorySummaryName,
		Content: "Compressed memory summary:\n" + summarize(middle),
	}

	out := make([]agentcore.Message, 0, 2+len(recent))
	out = append(out, head, summary)
	out = append(out, recent...)
	return out, true
}

func dropPriorSummary(messages []agentcore.Message) []agentcore.Message {
	out := make([]agentcore.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == agentcore.RoleSystem && m.Name == agentcore.MemorySummaryName {
			continue
		}
		out = append(out, m)
	}
	return out
}

func summarize(middle []agentcore.Message) string {
	n := len(middle)
	lineCount := n
	if lineCount > maxSummaryLines {
		lineCount = maxSummaryLines
	}

	lines := make([]string, 0, lineCount+1)
	for i := 0; i < lineCount; i++ {
		m := middle[i]
		text := flattenNewlines(m.Content)
		text = truncate(text, maxLineChars)
		lines = append(lines, fmt.Sprintf("%02d. %s: %s", i+1, m.Role, text))
	}
	if n > lineCount {
		lines = append(lines, fmt.Sprintf("... %d more messages omitted ...", n-lineCount))
	}
	return strings.Join(lines, "\n")
}

func flattenNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
