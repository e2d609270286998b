package domain

import "time"

// Status classifies a single executed test case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TestOutcome is one parsed execution record, produced once per (test, attempt).
type TestOutcome struct {
	ClassName string        `json:"classname"`
	Name      string        `json:"name"`
	File      string        `json:"file,omitempty"`
	Status    Status        `json:"status"`
	Duration  time.Duration `json:"-"`
	Seconds   float64       `json:"time"`
	Message   string        `json:"message,omitempty"`
}

// RunSummary aggregates one results document. It is derived fresh on every parse.
type RunSummary struct {
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Tests    []TestOutcome `json:"tests"`
	Duration float64       `json:"duration"`
}

// Total returns the number of executed records.
func (s RunSummary) Total() int {
	return s.Passed + s.Failed + s.Skipped
}

// FailedOutcomes returns the failed records in source order.
func (s RunSummary) FailedOutcomes() []TestOutcome {
	var failed []TestOutcome
	for _, t := range s.Tests {
		if t.Status == StatusFailed {
			failed = append(failed, t)
		}
	}
	return failed
}
