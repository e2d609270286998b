package discovery

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Resolver locates the module that defines a test function by scanning
// source files for "def <name>(".
//
// The scan can produce false positives: a common case name defined in several
// modules resolves to the first file in walk order, which is not necessarily
// the module that failed. It is only used when the results carry neither a
// file attribute nor a classname that maps to an existing file.
type Resolver struct {
	root    string
	scanner *Scanner

	once  sync.Once
	files []string
	cache map[string]string
}

// NewResolver creates a Resolver over the test files below root
func NewResolver(root string, scanner *Scanner) *Resolver {
	return &Resolver{root: root, scanner: scanner, cache: make(map[string]string)}
}

// Locate returns the root-relative module path defining caseName.
// Parametrization suffixes ("[...]") are ignored.
func (r *Resolver) Locate(caseName string) (string, bool) {
	name := stripParams(caseName)
	if name == "" {
		return "", false
	}
	if path, ok := r.cache[name]; ok {
		return path, path != ""
	}

	r.once.Do(func() {
		r.files, _ = r.scanner.Scan(r.root)
	})

	pattern := regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+` + regexp.QuoteMeta(name) + `\s*\(`)
	for _, file := range r.files {
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		if pattern.Match(content) {
			rel, err := filepath.Rel(r.root, file)
			if err != nil {
				rel = file
			}
			rel = filepath.ToSlash(rel)
			r.cache[name] = rel
			return rel, true
		}
	}

	r.cache[name] = ""
	return "", false
}

func stripParams(name string) string {
	for i, c := range name {
		if c == '[' {
			return name[:i]
		}
	}
	return name
}
