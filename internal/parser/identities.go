package parser

import (
	"os"
	"path/filepath"
	"strings"

	"suitectl/internal/domain"
)

// Locator finds the module that defines a test function.
type Locator interface {
	Locate(caseName string) (string, bool)
}

// FailedIdentities maps the failed outcomes of summary to identities the engine
// can re-invoke, in source order and without duplicates.
//
// Resolution order: the file attribute, then the dotted classname checked
// against files below root, then locator, then the dotted classname guess.
// Outcomes without a file and without a classname are dropped.
func FailedIdentities(summary domain.RunSummary, root string, locator Locator) []domain.TestIdentity {
	seen := make(map[domain.TestIdentity]bool)
	var ids []domain.TestIdentity

	for _, t := range summary.FailedOutcomes() {
		id, ok := resolve(t, root, locator)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func resolve(t domain.TestOutcome, root string, locator Locator) (domain.TestIdentity, bool) {
	if t.File != "" {
		module := filepath.ToSlash(t.File)
		return canonical(root, module, classPart(module, t.ClassName), t.Name), true
	}

	if t.ClassName != "" {
		if module, class, ok := moduleFromClassName(root, t.ClassName); ok {
			return canonical(root, module, class, t.Name), true
		}
	}

	if locator != nil {
		if module, ok := locator.Locate(t.Name); ok {
			return canonical(root, module, nil, t.Name), true
		}
	}

	if t.ClassName == "" {
		return "", false
	}
	return canonical(root, strings.ReplaceAll(t.ClassName, ".", "/")+".py", nil, t.Name), true
}

func canonical(root, module string, class []string, name string) domain.TestIdentity {
	parts := append([]string{module}, class...)
	parts = append(parts, name)
	return domain.Canonical(root, strings.Join(parts, domain.NodeSeparator))
}

// classPart returns the class path of classname below the dotted module name,
// e.g. "tests.test_login.TestLocked" in "tests/test_login.py" -> ["TestLocked"].
func classPart(module, classname string) []string {
	dotted := strings.ReplaceAll(strings.TrimSuffix(module, ".py"), "/", ".")
	rest, ok := strings.CutPrefix(classname, dotted+".")
	if !ok || rest == "" {
		return nil
	}
	return strings.Split(rest, ".")
}

// moduleFromClassName tries the longest dotted prefix of classname that names
// an existing .py file below root.
func moduleFromClassName(root, classname string) (string, []string, bool) {
	parts := strings.Split(classname, ".")
	for i := len(parts); i > 0; i-- {
		module := strings.Join(parts[:i], "/") + ".py"
		if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(module))); err == nil && !info.IsDir() {
			return module, parts[i:], true
		}
	}
	return "", nil, false
}
