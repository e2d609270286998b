package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/config"
)

func newFlagSet(flags *Flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.StringVar(&flags.Pattern, "pattern", config.DefaultPattern, "")
	fs.IntVarP(&flags.Parallel, "parallel", "n", config.DefaultParallel, "")
	fs.IntVarP(&flags.Retries, "retries", "r", config.DefaultRetries, "")
	fs.BoolVar(&flags.Clear, "clear", config.DefaultClear, "")
	fs.BoolVar(&flags.NoClear, "no-clear", false, "")
	fs.StringVarP(&flags.Markers, "markers", "m", "", "")
	return fs
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "suitectl.yaml"), []byte("run:\n  retries: 2\n  parallel: 4\n"), 0644))

	v := config.NewViper()
	v.AddConfigPath(dir)

	var flags Flags
	fs := newFlagSet(&flags)
	require.NoError(t, fs.Parse([]string{"-r", "5", "-m", "smoke"}))

	cfg, err := LoadConfig(v, fs, &flags)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, 4, cfg.Parallel)
	assert.True(t, cfg.Clear)
	assert.Equal(t, "smoke", cfg.Flags.Markers)
	assert.Equal(t, config.DefaultPattern, cfg.Pattern)
}

func TestLoadConfig_NoClear(t *testing.T) {
	var flags Flags
	fs := newFlagSet(&flags)
	require.NoError(t, fs.Parse([]string{"--no-clear"}))

	v := config.NewViper()
	v.SetConfigName("missing-suitectl")
	cfg, err := LoadConfig(v, fs, &flags)
	require.NoError(t, err)
	assert.False(t, cfg.Clear)
}

func TestBindFlags_SkipsUnknownFlags(t *testing.T) {
	v := viper.New()
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	var pattern string
	fs.StringVar(&pattern, "pattern", "", "")
	require.NoError(t, fs.Parse([]string{"--pattern", "check_*.py"}))

	require.NoError(t, BindFlags(v, fs, ConfigKeys))
	assert.Equal(t, "check_*.py", v.GetString(config.KeyPattern))
	assert.Equal(t, 0, v.GetInt(config.KeyRetries))
}

func TestFlags_ToConfigFlags(t *testing.T) {
	f := Flags{Path: "tests/test_login.py", NameFilter: "*login*", KExpr: "locked", Resume: true, TestCases: true, Verbose: true}
	assert.Equal(t, config.Flags{
		Path:       "tests/test_login.py",
		NameFilter: "*login*",
		KExpr:      "locked",
		Resume:     true,
		TestCases:  true,
		Verbose:    true,
	}, f.ToConfigFlags())
}
