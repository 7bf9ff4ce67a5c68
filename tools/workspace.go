package tools

import (
	"path/filepath"
	"strings"

	"github.com/haasonsaas/agentcore"
)

// ResolveWorkspacePath resolves raw — which may be relative or absolute —
// against c.Workspace and rejects any result that, once normalized, is
// neither equal to nor a descendant of the workspace root. Normalization is
// lexical (filepath.Clean/Abs; symlinks are not resolved), and the
// descendant test requires the root followed by a path separator, so
// "/ws-evil" cannot be mistaken for a child of "/ws".
func (c *Context) ResolveWorkspacePath(raw string) (string, error) {
	root, err := filepath.Abs(filepath.Clean(c.Workspace))
	if err != nil {
		return "", err
	}

	var target string
	if filepath.IsAbs(raw) {
		target, err = filepath.Abs(filepath.Clean(raw))
	} else {
		target, err = filepath.Abs(filepath.Clean(filepath.Join(root, raw)))
	}
	if err != nil {
		return "", err
	}

	if target == root {
		return target, nil
	}
	if !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", agentcore.ErrWorkspacePathEscape
	}
	return target, nil
}
