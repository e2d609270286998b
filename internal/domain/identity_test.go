package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		raw      string
		expected TestIdentity
	}{
		{
			name:     "relative identity is kept",
			raw:      "src/tests/test_login.py::test_login_locked_user",
			expected: "src/tests/test_login.py::test_login_locked_user",
		},
		{
			name:     "absolute identity inside root becomes relative",
			raw:      filepath.Join(root, "src", "tests", "test_login.py") + "::test_login_locked_user",
			expected: "src/tests/test_login.py::test_login_locked_user",
		},
		{
			name:     "dot segments are cleaned",
			raw:      "./src/tests/../tests/test_login.py::test_login_no_user",
			expected: "src/tests/test_login.py::test_login_no_user",
		},
		{
			name:     "class scoped case keeps every segment",
			raw:      "tests/test_cart.py::TestCart::test_add",
			expected: "tests/test_cart.py::TestCart::test_add",
		},
		{
			name:     "parameter suffix is preserved",
			raw:      "tests/test_cart.py::test_add[chromium-1]",
			expected: "tests/test_cart.py::test_add[chromium-1]",
		},
		{
			name:     "absolute path outside root stays absolute",
			raw:      "/elsewhere/test_x.py::test_a",
			expected: "/elsewhere/test_x.py::test_a",
		},
		{
			name:     "empty input",
			raw:      "  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonical(root, tt.raw))
		})
	}
}

func TestTestIdentity_Parts(t *testing.T) {
	id := NewTestIdentity("src/tests/test_checkout.py", "test_placeorder")

	assert.Equal(t, "src/tests/test_checkout.py::test_placeorder", id.String())
	assert.Equal(t, "src/tests/test_checkout.py", id.ModulePath())
	assert.Equal(t, "test_placeorder", id.CaseName())
	assert.Equal(t, "test_placeorder", id.Suffix())

	bare := TestIdentity("src/tests/test_checkout.py")
	assert.Equal(t, "", bare.CaseName())
	assert.Equal(t, "test_checkout.py", bare.Suffix())
}

func TestTestIdentity_ParametrizedParts(t *testing.T) {
	id := TestIdentity("tests/test_a.py::TestCart::test_x[a::b]")

	assert.Equal(t, "tests/test_a.py", id.ModulePath())
	assert.Equal(t, "test_x[a::b]", id.CaseName())
	assert.Equal(t, "test_x[a::b]", id.Suffix())
}

func TestIdentitiesRoundTrip(t *testing.T) {
	raw := []string{"a.py::t1", "b.py::t2"}
	assert.Equal(t, raw, Strings(Identities(raw)))
	assert.Empty(t, Strings(nil))
}
