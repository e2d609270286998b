package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/domain"
)

const loginResults = `<?xml version="1.0" encoding="utf-8"?>
<testsuites>
  <testsuite name="pytest" errors="0" failures="1" skipped="1" tests="3" time="2.1">
    <testcase classname="tests.test_login" name="test_login_standard_user" time="0.5"/>
    <testcase classname="tests.test_login" name="test_login_locked_user" time="1.5">
      <failure message="AssertionError: locked out">assert False</failure>
    </testcase>
    <testcase classname="tests.test_login" name="test_login_problem_user" time="0">
      <skipped message="flaky"/>
    </testcase>
  </testsuite>
</testsuites>
`

func TestParseBytes_Counts(t *testing.T) {
	summary, err := ParseBytes([]byte(loginResults))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.InDelta(t, 2.0, summary.Duration, 1e-9)
	require.Len(t, summary.Tests, 3)

	assert.Equal(t, "test_login_standard_user", summary.Tests[0].Name)
	assert.Equal(t, domain.StatusFailed, summary.Tests[1].Status)
	assert.Equal(t, "AssertionError: locked out", summary.Tests[1].Message)
	assert.Equal(t, domain.StatusSkipped, summary.Tests[2].Status)
}

func TestParseBytes_ErrorCountsAsFailed(t *testing.T) {
	doc := `<testsuite>
  <testcase classname="a" name="t1" time="0.1"><error message="setup"/></testcase>
  <testcase classname="a" name="t2" time="0.1"><failure/><skipped/></testcase>
</testsuite>`

	summary, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, summary.Skipped)
}

func TestParseBytes_ZeroRecords(t *testing.T) {
	summary, err := ParseBytes([]byte(`<testsuites><testsuite name="empty" tests="0"/></testsuites>`))
	require.NoError(t, err)

	assert.Zero(t, summary.Total())
	assert.Zero(t, summary.Duration)
	assert.Empty(t, summary.Tests)
}

func TestParseBytes_MalformedTime(t *testing.T) {
	doc := `<testsuite>
  <testcase classname="a" name="t1" time="abc"/>
  <testcase classname="a" name="t2" time="-3"/>
  <testcase classname="a" name="t3"/>
  <testcase classname="a" name="t4" time="0.25"/>
</testsuite>`

	summary, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Passed)
	assert.InDelta(t, 0.25, summary.Duration, 1e-9)
	for _, tc := range summary.Tests {
		assert.GreaterOrEqual(t, tc.Seconds, 0.0)
	}
}

func TestParseBytes_BrokenDocument(t *testing.T) {
	_, err := ParseBytes([]byte(`<testsuite><testcase name="x">`))
	assert.Error(t, err)
}

func TestParse_MissingFile(t *testing.T) {
	summary, err := Parse(filepath.Join(t.TempDir(), "missing.xml"))
	require.NoError(t, err)
	assert.Zero(t, summary.Total())
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xml")
	require.NoError(t, os.WriteFile(path, []byte(loginResults), 0644))

	summary, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total())
}
