package domain

import (
	"path/filepath"
	"strings"
)

// NodeSeparator separates the module path from the case name in a test identity.
const NodeSeparator = "::"

// TestIdentity addresses a single executable test case, e.g. "tests/test_login.py::test_login_locked_user".
type TestIdentity string

// NewTestIdentity joins a module path and a case name into an identity.
func NewTestIdentity(modulePath, caseName string) TestIdentity {
	if caseName == "" {
		return TestIdentity(filepath.ToSlash(modulePath))
	}
	return TestIdentity(filepath.ToSlash(modulePath) + NodeSeparator + caseName)
}

// Canonical normalizes a raw identity relative to root so that absolute and
// root-relative forms of the same case compare equal.
func Canonical(root, raw string) TestIdentity {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	path, rest, _ := strings.Cut(raw, NodeSeparator)
	path = canonicalPath(root, path)

	if rest == "" {
		return TestIdentity(path)
	}
	return TestIdentity(path + NodeSeparator + rest)
}

func canonicalPath(root, path string) string {
	if path == "" {
		return path
	}

	cleaned := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(cleaned) && root != "" {
		if absRoot, err := filepath.Abs(root); err == nil {
			if rel, err := filepath.Rel(absRoot, cleaned); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				cleaned = rel
			}
		}
	}

	return filepath.ToSlash(cleaned)
}

// ModulePath returns the file part of the identity.
func (id TestIdentity) ModulePath() string {
	path, _, _ := strings.Cut(string(id), NodeSeparator)
	return path
}

// CaseName returns the last "::" segment, the test function name with any parameter suffix.
// Separators inside the "[...]" parameter block are not segment boundaries.
func (id TestIdentity) CaseName() string {
	s := string(id)
	head := s
	if i := strings.IndexByte(s, '['); i >= 0 {
		head = s[:i]
	}
	if i := strings.LastIndex(head, NodeSeparator); i >= 0 {
		return s[i+len(NodeSeparator):]
	}
	return ""
}

// Suffix returns the case name, or the last path segment when the identity has none.
func (id TestIdentity) Suffix() string {
	if name := id.CaseName(); name != "" {
		return name
	}
	s := string(id)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (id TestIdentity) String() string {
	return string(id)
}

// Strings converts identities to plain strings, the form the engine accepts as arguments.
func Strings(ids []TestIdentity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

// Identities converts plain strings back to identities.
func Identities(raw []string) []TestIdentity {
	out := make([]TestIdentity, 0, len(raw))
	for _, r := range raw {
		out = append(out, TestIdentity(r))
	}
	return out
}
