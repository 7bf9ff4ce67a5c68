package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator validates normalized tool-call arguments against a tool's
// registered JSON Schema before the handler runs, giving the dispatcher an
// extra invalid_arguments_payload catch beyond "is it an object". Compiled
// schemas are cached by tool name since a tool's schema is fixed for the
// life of the registry.
type SchemaValidator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator returns a validator with an empty compiled-schema cache.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate checks args against schema, compiling and caching schema under
// toolName on first use. A schema that fails to compile is treated as a
// validation error rather than a panic, since a malformed schema is a
// registration-time mistake the dispatcher should not crash on.
func (v *SchemaValidator) Validate(toolName string, schema json.RawMessage, args map[string]any) error {
	compiled, err := v.compile(toolName, schema)
	if err != nil {
		return fmt.Errorf("tools: schema for %q: %w", toolName, err)
	}
	if err := compiled.Validate(args); err != nil {
		return fmt.Errorf("tools: arguments for %q: %w", toolName, err)
	}
	return nil
}

func (v *SchemaValidator) compile(toolName string, schema json.RawMessage) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[toolName]; ok {
		return s, nil
	}

	compiler := jsonschema.NewCompiler()
	resourceName := toolName + ".json"
	if err := compiler.AddResource(resourceName, bytes.NewReader(schema)); err != nil {
		return nil, err
	}
	s, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, err
	}
	v.compiled[toolName] = s
	return s, nil
}
