package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"suitectl/internal/domain"
)

// Remover deletes filesystem entries
type Remover interface {
	RemoveAll(path string) error
}

type osRemover struct{}

func (osRemover) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Workspace owns the output directories of a run
type Workspace struct {
	ctx     domain.RunContext
	remover Remover
	logger  *slog.Logger
}

// New creates a Workspace for the given run context
func New(ctx domain.RunContext, logger *slog.Logger) *Workspace {
	return NewWithRemover(ctx, osRemover{}, logger)
}

// NewWithRemover creates a Workspace with a custom remover
func NewWithRemover(ctx domain.RunContext, remover Remover, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{ctx: ctx, remover: remover, logger: logger}
}

// Ensure creates every output directory, including the session store
func (w *Workspace) Ensure() error {
	for _, dir := range w.ctx.All() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Clear empties the report, log, video and screenshot directories.
// Sessions are never touched. A failing entry is logged and skipped.
// Returns the number of removed entries.
func (w *Workspace) Clear() int {
	removed := 0
	for _, dir := range w.ctx.Outputs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Warn("cannot read output directory", "dir", dir, "error", err)
			}
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if err := w.remover.RemoveAll(path); err != nil {
				w.logger.Warn("cannot remove output entry", "path", path, "error", err)
				continue
			}
			removed++
		}
	}
	return removed
}

// Prepare clears previous outputs when clear is set and ensures the layout exists
func (w *Workspace) Prepare(clear bool) error {
	if clear {
		n := w.Clear()
		w.logger.Debug("cleared previous outputs", "entries", n)
	}
	return w.Ensure()
}
