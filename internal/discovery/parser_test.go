package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginModule = `import pytest

from pages.login_page import LoginPage


def helper():
    def test_nested():
        pass


def test_login_standard_user(page):
    LoginPage(page).login("standard_user")


@pytest.mark.parametrize("user", ["a", "b"])
def test_login_params(page, user):
    pass


class TestLockedOut:
    def setup_method(self):
        pass

    def test_login_locked_user(self, page):
        pass

    async def test_async_case(self):
        pass


def test_after_class():
    pass


class Helper:
    def test_not_collected(self):
        pass
`

func TestParser_FindTestCases(t *testing.T) {
	parser := NewParser()

	testFile := filepath.Join(t.TempDir(), "test_login.py")
	require.NoError(t, os.WriteFile(testFile, []byte(loginModule), 0644))

	t.Run("finds module functions and class methods", func(t *testing.T) {
		testCases, err := parser.FindTestCases(testFile)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"TestLockedOut::test_async_case",
			"TestLockedOut::test_login_locked_user",
			"test_after_class",
			"test_login_params",
			"test_login_standard_user",
		}, testCases)
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := parser.FindTestCases("/non/existent/test_file.py")
		assert.Error(t, err)
	})
}
