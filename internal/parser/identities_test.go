package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/domain"
)

type stubLocator map[string]string

func (s stubLocator) Locate(name string) (string, bool) {
	path, ok := s[name]
	return path, ok
}

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func failed(classname, name, file string) domain.TestOutcome {
	return domain.TestOutcome{ClassName: classname, Name: name, File: file, Status: domain.StatusFailed}
}

func TestFailedIdentities_LoginScenario(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "tests/test_login.py")

	summary, err := ParseBytes([]byte(loginResults))
	require.NoError(t, err)

	ids := FailedIdentities(summary, root, nil)
	require.Len(t, ids, 1)
	assert.True(t, strings.HasSuffix(ids[0].String(), "test_login.py::test_login_locked_user"))
	assert.Equal(t, domain.TestIdentity("tests/test_login.py::test_login_locked_user"), ids[0])
}

func TestFailedIdentities_Resolution(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "tests/ui/test_checkout.py")

	tests := []struct {
		name    string
		outcome domain.TestOutcome
		locator Locator
		want    domain.TestIdentity
	}{
		{
			name:    "file attribute with class",
			outcome: failed("tests.test_login.TestLocked", "test_locked", "tests/test_login.py"),
			want:    "tests/test_login.py::TestLocked::test_locked",
		},
		{
			name:    "absolute file attribute",
			outcome: failed("", "test_abs", filepath.Join(root, "tests", "test_abs.py")),
			want:    "tests/test_abs.py::test_abs",
		},
		{
			name:    "classname maps to existing module and class",
			outcome: failed("tests.ui.test_checkout.TestCheckout", "test_placeorder[chromium]", ""),
			want:    "tests/ui/test_checkout.py::TestCheckout::test_placeorder[chromium]",
		},
		{
			name:    "locator fallback",
			outcome: failed("test_cart", "test_total", ""),
			locator: stubLocator{"test_total": "tests/cart/test_cart.py"},
			want:    "tests/cart/test_cart.py::test_total",
		},
		{
			name:    "dotted guess",
			outcome: failed("tests.test_gone", "test_x", ""),
			locator: stubLocator{},
			want:    "tests/test_gone.py::test_x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := domain.RunSummary{Failed: 1, Tests: []domain.TestOutcome{tt.outcome}}
			assert.Equal(t, []domain.TestIdentity{tt.want}, FailedIdentities(summary, root, tt.locator))
		})
	}
}

func TestFailedIdentities_SkipsPassedAndDuplicates(t *testing.T) {
	summary := domain.RunSummary{Tests: []domain.TestOutcome{
		{ClassName: "tests.test_a", Name: "test_ok", Status: domain.StatusPassed},
		failed("tests.test_a", "test_bad", ""),
		failed("tests.test_a", "test_bad", ""),
		failed("", "test_orphan", ""),
	}}

	ids := FailedIdentities(summary, t.TempDir(), nil)
	assert.Equal(t, []domain.TestIdentity{"tests/test_a.py::test_bad"}, ids)
}
