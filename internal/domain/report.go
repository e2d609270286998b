package domain

// RunReport describes the documents one driver invocation produced, handed to
// publishers once the engine work is done.
type RunReport struct {
	RunID       string
	Title       string
	Stats       RunSummary
	Failed      []TestIdentity // failing in the documents at ReportPath
	Remaining   []TestIdentity // still failing after the last attempt
	ReportPath  string
	ResultsPath string
	ChartPath   string
	ExitCode    int
	Attempts    int
	Duration    float64
	Env         Environment
}

// Succeeded reports whether the final engine attempt exited cleanly.
func (r RunReport) Succeeded() bool {
	return r.ExitCode == 0
}
