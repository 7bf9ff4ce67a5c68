package planner

import (
	"reflect"
	"testing"

	"github.com/haasonsaas/agentcore"
)

func intPtr(v int) *int { return &v }

func TestPlanToolNamesTaskFinishAlwaysFirst(t *testing.T) {
	task := agentcore.AgentTask{}
	names := PlanToolNames(task, nil)
	if len(names) == 0 || names[0] != TaskFinishTool {
		t.Fatalf("expected task_finish at index 0, got %v", names)
	}
}

func TestPlanToolNamesFullCombination(t *testing.T) {
	task := agentcore.AgentTask{
		AllowInterruption:         true,
		UseWorkspace:              true,
		AgentType:                 "computer",
		SubAgentsEnabled:          true,
		NativeMultimodal:          true,
		MemoryThresholdPercentage: intPtr(80),
		ExtraToolNames:            []string{"custom_tool"},
		Metadata:                  map[string]any{"available_skills": []string{"skill-a"}},
	}
	usage := 90
	names := PlanToolNames(task, &usage)

	expected := []string{
		TaskFinishTool, AskUserTool,
		"read_file", "write_file", "list_files",
		BashTool, CheckBackgroundCommand,
		CreateSubTaskTool, BatchSubTasksTool,
		ActivateSkillTool,
		ReadImageTool,
		CompressMemoryTool,
		"custom_tool",
	}
	if !reflect.DeepEqual(names, expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
}

func TestPlanToolNamesExcludeToolsWins(t *testing.T) {
	task := agentcore.AgentTask{
		UseWorkspace:  true,
		ExcludeTools:  []string{"write_file"},
	}
	names := PlanToolNames(task, nil)
	for _, n := range names {
		if n == "write_file" {
			t.Fatalf("expected write_file to be excluded, got %v", names)
		}
	}
}

func TestPlanToolNamesTaskFinishNonExcludable(t *testing.T) {
	task := agentcore.AgentTask{ExcludeTools: []string{TaskFinishTool}}
	names := PlanToolNames(task, nil)
	if len(names) == 0 || names[0] != TaskFinishTool {
		t.Fatalf("expected task_finish to survive exclude_tools, got %v", names)
	}
}

func TestPlanToolNamesBelowMemoryThresholdOmitsCompressMemory(t *testing.T) {
	task := agentcore.AgentTask{MemoryThresholdPercentage: intPtr(80)}
	usage := 10
	names := PlanToolNames(task, &usage)
	for _, n := range names {
		if n == CompressMemoryTool {
			t.Fatalf("expected compress_memory omitted below threshold, got %v", names)
		}
	}
}

func TestPlanToolNamesDeterministic(t *testing.T) {
	task := agentcore.AgentTask{UseWorkspace: true, ExtraToolNames: []string{"a", "a", "b"}}
	first := PlanToolNames(task, nil)
	second := PlanToolNames(task, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical plans across calls, got %v vs %v", first, second)
	}
	// dedup collapses the repeated "a"
	count := 0
	for _, n := range first {
		if n == "a" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected dedup to collapse repeated extra tool name, got %d occurrences", count)
	}
}
