package discovery

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	classPattern = regexp.MustCompile(`^(\s*)class\s+(Test\w*)\s*[:(]`)
	defPattern   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(test\w*)\s*\(`)
)

// Parser parses test files to extract test cases
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindTestCases returns the collectable cases of a test module as node id
// suffixes: "test_x" for module level functions, "TestCls::test_x" for methods.
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	defer file.Close()

	seen := make(map[string]bool)
	className := ""
	classIndent := -1

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if className != "" && indent <= classIndent {
			className, classIndent = "", -1
		}

		if m := classPattern.FindStringSubmatch(line); m != nil {
			className, classIndent = m[2], len(m[1])
			continue
		}

		m := defPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[2]
		if className != "" && len(m[1]) > classIndent {
			name = className + "::" + name
		} else if len(m[1]) > 0 {
			// nested helper inside a non-test scope
			continue
		}
		seen[name] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	testCases := make([]string, 0, len(seen))
	for testCase := range seen {
		testCases = append(testCases, testCase)
	}
	sort.Strings(testCases)

	return testCases, nil
}
