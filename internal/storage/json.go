package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"suitectl/internal/domain"
)

const (
	filePrefix = "session_"
	fileExt    = ".json"
	runIDTime  = "20060102T150405.000"
)

// NewRunID returns a lexicographically time ordered run id,
// e.g. "20240101T120000.123-1a2b3c4d".
func NewRunID(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format(runIDTime) + "-" + token
}

// Save writes the session through a temp file and rename. Saving the same
// session twice leaves the store in the same state.
func (s *JSONStorage) Save(session *domain.RunSession) error {
	if session == nil || session.RunID == "" {
		return fmt.Errorf("session has no run id")
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmpPath, s.PathFor(session.RunID)); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// LoadLatest returns the newest session, or nil when the store is empty or
// the newest file cannot be read.
func (s *JSONStorage) LoadLatest() *Entry {
	files, err := s.sessionFiles()
	if err != nil {
		s.logger.Warn("cannot list sessions", "dir", s.dir, "error", err)
		return nil
	}
	if len(files) == 0 {
		return nil
	}

	entry, err := load(files[0].path)
	if err != nil {
		s.logger.Warn("cannot load latest session", "path", files[0].path, "error", err)
		return nil
	}
	return entry
}

// List returns every readable session, newest first. Unreadable files are logged and skipped.
func (s *JSONStorage) List() ([]Entry, error) {
	files, err := s.sessionFiles()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entry, err := load(f.path)
		if err != nil {
			s.logger.Warn("skipping unreadable session", "path", f.path, "error", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

type sessionFile struct {
	path    string
	key     string
	modTime time.Time
}

// sessionFiles lists session files newest first: by run id timestamp, then
// modification time, then name.
func (s *JSONStorage) sessionFiles() ([]sessionFile, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []sessionFile
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		runID := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
		key, _, _ := strings.Cut(runID, "-")
		files = append(files, sessionFile{
			path:    filepath.Join(s.dir, name),
			key:     key,
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.key != b.key {
			return a.key > b.key
		}
		if !a.modTime.Equal(b.modTime) {
			return a.modTime.After(b.modTime)
		}
		return a.path > b.path
	})
	return files, nil
}

func load(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var session domain.RunSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &Entry{Path: path, Session: &session}, nil
}
