package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"suitectl/internal/domain"
)

// MergeFile merges recordings into the report at path in place. A missing
// report is not an error. The file is only rewritten when something was injected.
func (m *Merger) MergeFile(path string, artifacts *domain.ArtifactMap, targets []domain.TestIdentity) (int, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read report: %w", err)
	}

	merged, injected := m.Merge(doc, artifacts, targets, filepath.Dir(path))
	if injected == 0 {
		return 0, nil
	}

	if err := writeAtomic(path, merged); err != nil {
		return 0, err
	}
	return injected, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}
