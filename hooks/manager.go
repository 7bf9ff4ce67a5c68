package hooks

// Manager runs a registered, ordered list of hooks and folds their patches
// left to right. Registration order is execution order for every phase.
type Manager struct {
	hooks []Hook
}

// NewManager returns an empty hook chain.
func NewManager() *Manager {
	return &Manager{}
}

// Register appends h to the chain.
func (m *Manager) Register(h Hook) {
	m.hooks = append(m.hooks, h)
}

// RunBeforeLLM folds every hook's BeforeLLM patch in registration order.
// The first Abort short-circuits the fold and is returned immediately;
// later Messages/Tools patches overwrite earlier ones of the same field.
func (m *Manager) RunBeforeLLM(event BeforeLLMEvent) (*LLMPatch, error) {
	var folded LLMPatch
	touched := false
	for _, h := range m.hooks {
		patch, err := h.BeforeLLM(event)
		if err != nil {
			return nil, err
		}
		if patch == nil {
			continue
		}
		touched = true
		if patch.Abort {
			return patch, nil
		}
		if patch.Messages != nil {
			folded.Messages = patch.Messages
			event.Messages = patch.Messages
		}
		if patch.Tools != nil {
			folded.Tools = patch.Tools
			event.ToolNames = patch.Tools
		}
	}
	if !touched {
		return nil, nil
	}
	return &folded, nil
}

// RunAfterLLM invokes every hook's AfterLLM observer in order.
func (m *Manager) RunAfterLLM(event AfterLLMEvent) {
	for _, h := range m.hooks {
		h.AfterLLM(event)
	}
}

// RunBeforeToolCall folds every hook's ToolPatch in registration order, the
// same Abort-short-circuits / later-wins semantics as RunBeforeLLM.
func (m *Manager) RunBeforeToolCall(event BeforeToolCallEvent) (*ToolPatch, error) {
	var folded ToolPatch
	touched := false
	for _, h := range m.hooks {
		patch, err := h.BeforeToolCall(event)
		if err != nil {
			return nil, err
		}
		if patch == nil {
			continue
		}
		touched = true
		if patch.Abort {
			return patch, nil
		}
		if patch.Arguments != nil {
			folded.Arguments = patch.Arguments
			event.Call.Arguments = patch.Arguments
		}
	}
	if !touched {
		return nil, nil
	}
	return &folded, nil
}

// RunAfterToolCall invokes every hook's AfterToolCall observer in order.
func (m *Manager) RunAfterToolCall(event AfterToolCallEvent) {
	for _, h := range m.hooks {
		h.AfterToolCall(event)
	}
}

// RunBeforeMemoryCompact invokes every hook's BeforeMemoryCompact observer
// in order.
func (m *Manager) RunBeforeMemoryCompact(event BeforeMemoryCompactEvent) {
	for _, h := range m.hooks {
		h.BeforeMemoryCompact(event)
	}
}
