package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"suitectl/internal/discovery"
	"suitectl/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	out         io.Writer
	projectPath string
	parser      *discovery.Parser
}

// NewFormatter creates a new Formatter
func NewFormatter(out io.Writer, projectPath string, parser *discovery.Parser) *Formatter {
	return &Formatter{
		out:         out,
		projectPath: projectPath,
		parser:      parser,
	}
}

// PrintRunSummary displays the statistics of a finished run and its failing identities
func (f *Formatter) PrintRunSummary(report domain.RunReport) {
	fmt.Fprintln(f.out)
	color.New(color.FgCyan, color.Bold).Fprintf(f.out, "%s\n\n", report.Title)

	table := tablewriter.NewWriter(f.out)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{"Total", fmt.Sprintf("%d", report.Stats.Total())})
	table.Append([]string{"Passed", color.GreenString("%d", report.Stats.Passed)})
	table.Append([]string{"Failed", color.RedString("%d", report.Stats.Failed)})
	table.Append([]string{"Skipped", color.YellowString("%d", report.Stats.Skipped)})
	table.Append([]string{"Duration", fmt.Sprintf("%.2fs", report.Duration)})
	table.Append([]string{"Retry attempts", fmt.Sprintf("%d", report.Attempts)})
	table.Append([]string{"Exit code", fmt.Sprintf("%d", report.ExitCode)})
	if report.Env.EngineVersion != "" {
		table.Append([]string{"Engine", report.Env.EngineVersion})
	}
	table.Render()

	fmt.Fprintln(f.out)
	f.printPath("Report", report.ReportPath)
	f.printPath("Results", report.ResultsPath)
	f.printPath("Chart", report.ChartPath)
	fmt.Fprintln(f.out)

	if report.Succeeded() {
		color.New(color.FgGreen).Fprintln(f.out, "✓ Final attempt passed")
		return
	}

	color.New(color.FgRed).Fprintf(f.out, "✗ Final attempt exited with status %d\n", report.ExitCode)
	if len(report.Remaining) > 0 {
		fmt.Fprintln(f.out)
		f.PrintFailedTree(report.Remaining)
	}
}

func (f *Formatter) printPath(label, path string) {
	if path == "" {
		return
	}
	fmt.Fprintf(f.out, "%-8s %s\n", label+":", f.relative(path))
}

// PrintFailedTree prints failing identities grouped by module path
func (f *Formatter) PrintFailedTree(ids []domain.TestIdentity) {
	byModule := make(map[string][]string)
	for _, id := range ids {
		module := id.ModulePath()
		byModule[module] = append(byModule[module], strings.TrimPrefix(string(id), module+domain.NodeSeparator))
	}

	modules := make([]string, 0, len(byModule))
	for module := range byModule {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	for i, module := range modules {
		lastModule := i == len(modules)-1
		connector, indent := "├── ", "│   "
		if lastModule {
			connector, indent = "└── ", "    "
		}
		yellow.Fprintf(f.out, "%s%s\n", connector, module)

		cases := byModule[module]
		for j, c := range cases {
			branch := "├── "
			if j == len(cases)-1 {
				branch = "└── "
			}
			red.Fprintf(f.out, "%s%s%s\n", indent, branch, c)
		}
	}
}

// CountTestCases returns the total number of test cases across the given test files.
func (f *Formatter) CountTestCases(tests []string) (int, error) {
	var total int
	for _, test := range tests {
		cases, err := f.parser.FindTestCases(test)
		if err != nil {
			return 0, err
		}
		total += len(cases)
	}
	return total, nil
}

// PrintTestList prints a list of test files, optionally with test cases.
// failedModules is optional; modules in this set are marked with [F] (from the last session).
func (f *Formatter) PrintTestList(tests []string, showTestCases bool, failedModules map[string]struct{}) {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	if showTestCases {
		green.Fprintf(f.out, "Found %d test file(s) with test cases:\n\n", len(tests))
	} else {
		green.Fprintf(f.out, "Found %d test file(s):\n\n", len(tests))
	}

	for i, test := range tests {
		relPath := f.relative(test)
		isLastFile := i == len(tests)-1

		failMarker := ""
		if _, ok := failedModules[filepath.ToSlash(relPath)]; ok {
			failMarker = " " + color.RedString("[F]")
		}

		if isLastFile {
			cyan.Fprintf(f.out, "└── %s%s\n", relPath, failMarker)
		} else {
			cyan.Fprintf(f.out, "├── %s%s\n", relPath, failMarker)
		}

		if !showTestCases {
			continue
		}

		testCases, err := f.parser.FindTestCases(test)
		if err != nil {
			color.New(color.FgRed).Fprintf(f.out, "Error reading test file %s: %v\n", test, err)
			continue
		}

		indent := "│   "
		if isLastFile {
			indent = "    "
		}
		if len(testCases) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, color.RedString("(no test cases found)"))
		}
		for j, testCase := range testCases {
			branch := "├── "
			if j == len(testCases)-1 {
				branch = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, branch, color.YellowString(testCase))
		}

		// Add spacing between files (except for the last one)
		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}
}

func (f *Formatter) relative(path string) string {
	if f.projectPath == "" {
		return path
	}
	root, err := filepath.Abs(f.projectPath)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
