package storage

import (
	"log/slog"
	"path/filepath"
	"strings"

	"suitectl/internal/domain"
)

// Store persists and loads run sessions.
type Store interface {
	Save(session *domain.RunSession) error
	LoadLatest() *Entry
	List() ([]Entry, error)
}

// Entry is a stored session together with the file it was read from.
type Entry struct {
	Path    string
	Session *domain.RunSession
}

// Stem returns the file name without extension, e.g. "session_20240101T120000.000-1a2b3c4d".
func (e Entry) Stem() string {
	return strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path))
}

// JSONStorage stores one indented JSON file per session in a directory.
type JSONStorage struct {
	dir    string
	logger *slog.Logger
}

// NewJSONStorage returns a Store that reads/writes session files in dir.
func NewJSONStorage(dir string, logger *slog.Logger) *JSONStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStorage{dir: dir, logger: logger}
}

// PathFor returns the file a session with runID is stored in.
func (s *JSONStorage) PathFor(runID string) string {
	return filepath.Join(s.dir, filePrefix+runID+fileExt)
}
