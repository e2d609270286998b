package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs map[string]bool
	pattern  string
}

// NewScanner creates a new Scanner with the given directories to skip.
// pattern is matched against file base names, e.g. "test_*.py".
func NewScanner(skipDirs []string, pattern string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, pattern: pattern}
}

// Targets resolves the engine targets for path: a file is a single target,
// a directory is scanned recursively.
func (s *Scanner) Targets(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", path)
	}
	if !info.IsDir() {
		return []string{filepath.Clean(path)}, nil
	}
	return s.Scan(path)
}

// Scan finds all test files in the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Hidden directories (.venv, .git, .pytest_cache)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if s.matches(d.Name()) {
			testfiles = append(testfiles, path)
		}
		return nil
	})

	return testfiles, err
}

func (s *Scanner) matches(name string) bool {
	if s.pattern == "" {
		return strings.HasPrefix(name, "test_") && strings.HasSuffix(name, ".py")
	}
	matched, err := filepath.Match(s.pattern, name)
	return err == nil && matched
}
