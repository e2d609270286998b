package execution

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/logging"
)

func TestInvocation_Args(t *testing.T) {
	tests := []struct {
		name     string
		inv      Invocation
		expected []string
	}{
		{
			name: "targets only",
			inv: Invocation{
				Targets:     []string{"tests/test_login.py"},
				ReportPath:  "reports/report.html",
				ResultsPath: "reports/report.xml",
			},
			expected: []string{
				"tests/test_login.py",
				"--html=reports/report.html", "--self-contained-html",
				"--junitxml=reports/report.xml", "-o", "junit_family=xunit1",
			},
		},
		{
			name: "parallel markers keyword and extra args",
			inv: Invocation{
				Targets:     []string{"tests/test_a.py::test_x", "tests/test_b.py"},
				Markers:     "smoke and not slow",
				Keyword:     "login",
				Parallel:    4,
				ExtraArgs:   []string{"--browser", "firefox"},
				ReportPath:  "r.html",
				ResultsPath: "r.xml",
			},
			expected: []string{
				"-n", "4",
				"tests/test_a.py::test_x", "tests/test_b.py",
				"-m", "smoke and not slow",
				"-k", "login",
				"--browser", "firefox",
				"--html=r.html", "--self-contained-html",
				"--junitxml=r.xml", "-o", "junit_family=xunit1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.inv.Args())
		})
	}
}

func TestSplitArgs(t *testing.T) {
	args, err := SplitArgs(`--maxfail=2 --browser "firefox nightly"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"--maxfail=2", "--browser", "firefox nightly"}, args)

	args, err = SplitArgs("")
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = SplitArgs(`--browser "unterminated`)
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("pytest 8.2.1")
	require.NoError(t, err)
	assert.Equal(t, "8.2.1", v)

	_, err = ParseVersion("command not found")
	assert.Error(t, err)
}

func TestCommandEngine_ExitStatus(t *testing.T) {
	inv := Invocation{ReportPath: "r.html", ResultsPath: "r.xml", Dir: t.TempDir()}

	t.Run("zero exit", func(t *testing.T) {
		code, _, err := NewCommandEngine("true", io.Discard, io.Discard, logging.Discard()).Execute(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, 0, code)
	})

	t.Run("non-zero exit is a status", func(t *testing.T) {
		code, _, err := NewCommandEngine("false", io.Discard, io.Discard, logging.Discard()).Execute(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, 1, code)
	})

	t.Run("killed engine is a status", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, "engine")
		require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho '<testsuites/>' > r.xml\nkill -9 $$\n"), 0755))

		code, _, err := NewCommandEngine(script, io.Discard, io.Discard, logging.Discard()).Execute(context.Background(), Invocation{ResultsPath: "r.xml", Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, -1, code)
		assert.FileExists(t, filepath.Join(dir, "r.xml"))
	})

	t.Run("missing binary is an error", func(t *testing.T) {
		_, _, err := NewCommandEngine("suitectl-no-such-engine", io.Discard, io.Discard, logging.Discard()).Execute(context.Background(), inv)
		assert.Error(t, err)
	})

	t.Run("cancelled context does not start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := NewCommandEngine("true", io.Discard, io.Discard, logging.Discard()).Execute(ctx, inv)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
