package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"suitectl/internal/domain"
)

type junitMessage struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

type junitCase struct {
	ClassName string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	File      string        `xml:"file,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure"`
	Error     *junitMessage `xml:"error"`
	Skipped   *junitMessage `xml:"skipped"`
}

// Parse reads a JUnit results document. A missing file yields an empty summary.
func Parse(path string) (domain.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.RunSummary{}, nil
		}
		return domain.RunSummary{}, fmt.Errorf("read results %s: %w", path, err)
	}

	summary, err := ParseBytes(data)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("parse results %s: %w", path, err)
	}
	return summary, nil
}

// ParseBytes collects every <testcase> element at any depth, in document order.
func ParseBytes(data []byte) (domain.RunSummary, error) {
	var summary domain.RunSummary

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.RunSummary{}, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "testcase" {
			continue
		}

		var tc junitCase
		if err := decoder.DecodeElement(&tc, &start); err != nil {
			return domain.RunSummary{}, err
		}

		outcome := toOutcome(tc)
		switch outcome.Status {
		case domain.StatusFailed:
			summary.Failed++
		case domain.StatusSkipped:
			summary.Skipped++
		default:
			summary.Passed++
		}
		summary.Duration += outcome.Seconds
		summary.Tests = append(summary.Tests, outcome)
	}

	return summary, nil
}

func toOutcome(tc junitCase) domain.TestOutcome {
	seconds := parseSeconds(tc.Time)
	outcome := domain.TestOutcome{
		ClassName: tc.ClassName,
		Name:      tc.Name,
		File:      tc.File,
		Status:    domain.StatusPassed,
		Seconds:   seconds,
		Duration:  time.Duration(seconds * float64(time.Second)),
	}

	switch {
	case tc.Failure != nil:
		outcome.Status = domain.StatusFailed
		outcome.Message = messageOf(tc.Failure)
	case tc.Error != nil:
		outcome.Status = domain.StatusFailed
		outcome.Message = messageOf(tc.Error)
	case tc.Skipped != nil:
		outcome.Status = domain.StatusSkipped
		outcome.Message = messageOf(tc.Skipped)
	}
	return outcome
}

// parseSeconds treats malformed, negative and non-finite values as zero.
func parseSeconds(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func messageOf(m *junitMessage) string {
	if m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(m.Text)
}
