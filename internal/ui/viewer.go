package ui

import (
	"sort"
	"strconv"

	"suitectl/internal/domain"
	"suitectl/internal/parser"
)

// Viewer displays the failures of a stored session
type Viewer interface {
	View(session *domain.RunSession, recordings *domain.ArtifactMap) error
}

// AttemptStatus is the status of a failure in one retry attempt
type AttemptStatus struct {
	Attempt int
	Status  domain.Status
}

// FailureEntry is one initially failing test with its retry history
type FailureEntry struct {
	Identity     domain.TestIdentity
	Outcome      domain.TestOutcome
	Attempts     []AttemptStatus
	StillFailing bool
	Recordings   []string
}

// BuildFailureEntries lists the initial failures of session in source order
func BuildFailureEntries(session *domain.RunSession, root string, recordings *domain.ArtifactMap) []FailureEntry {
	if session == nil {
		return nil
	}

	failing := make(map[domain.TestIdentity]bool)
	for _, id := range session.FailedIdentities() {
		failing[domain.Canonical(root, string(id))] = true
	}

	attempts := make([]int, 0, len(session.Retries))
	for key := range session.Retries {
		if n, err := strconv.Atoi(key); err == nil {
			attempts = append(attempts, n)
		}
	}
	sort.Ints(attempts)

	var entries []FailureEntry
	for _, outcome := range session.Stats.FailedOutcomes() {
		ids := parser.FailedIdentities(domain.RunSummary{Tests: []domain.TestOutcome{outcome}}, root, nil)
		if len(ids) == 0 {
			continue
		}
		entry := FailureEntry{
			Identity:     ids[0],
			Outcome:      outcome,
			StillFailing: failing[ids[0]],
			Recordings:   recordings.Lookup(string(ids[0])),
		}
		for _, n := range attempts {
			summary := session.Retries[strconv.Itoa(n)]
			for _, t := range summary.Tests {
				if t.ClassName == outcome.ClassName && t.Name == outcome.Name {
					entry.Attempts = append(entry.Attempts, AttemptStatus{Attempt: n, Status: t.Status})
					break
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
