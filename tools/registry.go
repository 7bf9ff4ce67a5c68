package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/haasonsaas/agentcore"
)

// Registry holds name→Tool bindings. It is read-only after construction in
// the steady state (spec §5: "the registry is read-only after
// construction"), but registration itself is guarded so setup code can
// build it concurrently if it wants to.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register binds name to tool. It rejects duplicate names and names over
// MaxToolNameLength.
func (r *Registry) Register(tool Tool) error {
	if len(tool.Name) == 0 {
		return fmt.Errorf("tools: empty tool name")
	}
	if len(tool.Name) > MaxToolNameLength {
		return fmt.Errorf("tools: name %q exceeds max length %d", tool.Name, MaxToolNameLength)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tools: %w: %s", agentcore.ErrDuplicateTool, tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// RegisterMany registers each tool, stopping at the first error.
func (r *Registry) RegisterMany(list []Tool) error {
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Get performs an O(1) lookup, returning agentcore.ErrToolNotFound if name
// is unbound.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("tools: %w: %s", agentcore.ErrToolNotFound, name)
	}
	return tool, nil
}

// Has reports whether name is registered, without the error-allocation cost
// of Get.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// HasSchema reports whether name is registered AND carries a non-empty
// schema, the predicate plan_tool_schemas filters on.
func (r *Registry) HasSchema(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return ok && len(tool.Schema) > 0
}

// OpenAITool is the wire shape an OpenAI-compatible LLMClient expects per
// advertised tool.
type OpenAITool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// SchemasFor returns the advertisable schema for each name in names that is
// both registered and schema-bearing, in the given order. A name missing
// either condition is silently dropped — per spec.md §4.4, a missing schema
// never fails planning.
func (r *Registry) SchemasFor(names []string) []OpenAITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]OpenAITool, 0, len(names))
	for _, name := range names {
		tool, ok := r.tools[name]
		if !ok || len(tool.Schema) == 0 {
			continue
		}
		out = append(out, OpenAITool{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Schema,
		})
	}
	return out
}
