package domain

import "path/filepath"

// RunContext carries the resolved output roots of one invocation.
type RunContext struct {
	Root        string
	Reports     string
	Logs        string
	Videos      string
	Screenshots string
	Sessions    string
}

// NewRunContext resolves the standard output directories below root.
func NewRunContext(root string) RunContext {
	return RunContext{
		Root:        root,
		Reports:     filepath.Join(root, "reports"),
		Logs:        filepath.Join(root, "logs"),
		Videos:      filepath.Join(root, "videos"),
		Screenshots: filepath.Join(root, "screenshots"),
		Sessions:    filepath.Join(root, "session"),
	}
}

// Outputs returns the directories that are cleared before a run. Sessions survive.
func (c RunContext) Outputs() []string {
	return []string{c.Reports, c.Logs, c.Videos, c.Screenshots}
}

// All returns every directory owned by the context.
func (c RunContext) All() []string {
	return append(c.Outputs(), c.Sessions)
}
