// Package planner synthesizes the per-task ordered tool-name list (C4),
// grounded on the original implementation's runtime/tool_planner.py,
// generalized to the exact eleven-step ordering spec.md §4.4 specifies.
package planner

// Well-known tool names the planner reasons about directly. Concrete
// handlers for these live in the builtin package; planner only needs the
// names to build the ordered list the registry is later asked to resolve
// schemas for.
const (
	TaskFinishTool          = "task_finish"
	AskUserTool             = "ask_user"
	CompressMemoryTool      = "compress_memory"
	BashTool                = "bash"
	CheckBackgroundCommand  = "check_background_command"
	CreateSubTaskTool       = "create_sub_task"
	BatchSubTasksTool       = "batch_sub_tasks"
	ActivateSkillTool       = "activate_skill"
	ReadImageTool           = "read_image"
)

// WorkspaceTools is the fixed group of file-oriented tool names appended
// when an AgentTask.UseWorkspace is set, grounded on the teacher's
// internal/tools/files package (read.go, write.go, list.go).
var WorkspaceTools = []string{"read_file", "write_file", "list_files"}
