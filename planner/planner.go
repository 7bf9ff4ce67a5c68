package planner

import (
	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/tools"
)

// SchemaResolver is the subset of *tools.Registry the second planning step
// needs. Declaring it as an interface keeps planner decoupled from the
// concrete registry type for testing.
type SchemaResolver interface {
	SchemasFor(names []string) []tools.OpenAITool
}

// PlanToolNames deterministically builds the ordered tool-name list for
// task, given an optional memory-usage percentage (nil when the caller has
// not computed one yet, e.g. before the first cycle). The eleven steps
// below follow spec.md §4.4 exactly; task_finish is always first and is
// never removed by ExcludeTools (spec.md §9's resolved Open Question).
func PlanToolNames(task agentcore.AgentTask, memoryUsagePercentage *int) []string {
	names := []string{TaskFinishTool}

	if task.AllowInterruption {
		names = append(names, AskUserTool)
	}
	if task.UseWorkspace {
		names = append(names, WorkspaceTools...)
	}
	if task.AgentType == "computer" {
		names = append(names, BashTool, CheckBackgroundCommand)
	}
	if task.SubAgentsEnabled {
		names = append(names, CreateSubTaskTool, BatchSubTasksTool)
	}
	if hasAvailableSkills(task.Metadata) {
		names = append(names, ActivateSkillTool)
	}
	if task.NativeMultimodal {
		names = append(names, ReadImageTool)
	}
	if overThreshold(task, memoryUsagePercentage) {
		names = append(names, CompressMemoryTool)
	}
	names = append(names, task.ExtraToolNames...)

	excluded := toSet(task.ExcludeTools)
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if name == TaskFinishTool {
			filtered = append(filtered, name)
			continue
		}
		if excluded[name] {
			continue
		}
		filtered = append(filtered, name)
	}

	return dedup(filtered)
}

// PlanToolSchemas resolves PlanToolNames' output against registry, silently
// dropping any name that is unregistered or schema-less — a missing schema
// never fails planning.
func PlanToolSchemas(registry SchemaResolver, task agentcore.AgentTask, memoryUsagePercentage *int) []tools.OpenAITool {
	names := PlanToolNames(task, memoryUsagePercentage)
	return registry.SchemasFor(names)
}

func hasAvailableSkills(metadata map[string]any) bool {
	raw, ok := metadata["available_skills"]
	if !ok {
		return false
	}
	switch v := raw.(type) {
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return false
	}
}

func overThreshold(task agentcore.AgentTask, memoryUsagePercentage *int) bool {
	if memoryUsagePercentage == nil || task.MemoryThresholdPercentage == nil {
		return false
	}
	return *memoryUsagePercentage >= *task.MemoryThresholdPercentage
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
