package domain

import (
	"strconv"
	"time"
)

// Environment describes where a run was executed.
type Environment struct {
	Platform      string `json:"platform"`
	Runtime       string `json:"runtime"`
	EngineVersion string `json:"engine_version,omitempty"`
}

// RunSession is the persisted unit of work for one driver invocation.
type RunSession struct {
	RunID         string                `json:"run_id"`
	CreatedAt     time.Time             `json:"created_at"`
	Stats         RunSummary            `json:"stats"`
	FailedNodeIDs []string              `json:"failed_nodeids"`
	Duration      float64               `json:"duration"`
	Env           Environment           `json:"env"`
	Retries       map[string]RunSummary `json:"retries,omitempty"`
	ExitCode      int                   `json:"exit_code"`
	ReportPath    string                `json:"report,omitempty"`
	ResultsPath   string                `json:"results,omitempty"`
}

// FailedIdentities returns the current failing set.
func (s *RunSession) FailedIdentities() []TestIdentity {
	return Identities(s.FailedNodeIDs)
}

// RecordAttempt replaces the failing set with the outcome of a retry attempt and
// keeps that attempt's summary for audit.
func (s *RunSession) RecordAttempt(attempt int, summary RunSummary, failed []TestIdentity, exitCode int) {
	if s.Retries == nil {
		s.Retries = make(map[string]RunSummary)
	}
	s.Retries[strconv.Itoa(attempt)] = summary
	s.FailedNodeIDs = Strings(failed)
	s.ExitCode = exitCode
}
