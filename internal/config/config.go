package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"suitectl/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string
	Pattern     string

	// Engine settings
	Engine     string
	EngineArgs string
	EnvFile    string

	// Execution settings
	Parallel int
	Retries  int
	Clear    bool

	// Paths to ignore when scanning
	PathsToIgnore []string

	Log LogConfig

	// Command flags
	Flags Flags
}

// LogConfig configures the rotating diagnostic log
type LogConfig struct {
	Filename   string
	Level      string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Flags holds per invocation command-line flags
type Flags struct {
	Path       string
	NameFilter string
	Markers    string
	KExpr      string
	Resume     bool
	TestCases  bool
	Verbose    bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: DefaultProjectPath,
		TestPath:    DefaultTestPath,
		Pattern:     DefaultPattern,
		Engine:      DefaultEngine,
		EnvFile:     DefaultEnvFile,
		Parallel:    DefaultParallel,
		Retries:     DefaultRetries,
		Clear:       DefaultClear,
		Log: LogConfig{
			Filename:   DefaultLogFile,
			Level:      DefaultLogLevel,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
			Compress:   DefaultLogCompress,
		},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// GetTestPath returns the discovery path, using the --path flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.Path != "" {
		if filepath.IsAbs(c.Flags.Path) {
			return c.Flags.Path
		}
		return filepath.Join(c.ProjectPath, c.Flags.Path)
	}

	return filepath.Join(c.ProjectPath, c.TestPath)
}

// RunContext resolves the output roots of this invocation.
func (c *Config) RunContext() domain.RunContext {
	root := c.ProjectPath
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return domain.NewRunContext(root)
}

// GetLogPath returns the diagnostic log file path
func (c *Config) GetLogPath() string {
	if filepath.IsAbs(c.Log.Filename) {
		return c.Log.Filename
	}
	return filepath.Join(c.RunContext().Logs, c.Log.Filename)
}

// EngineEnv reads the project env file into KEY=VALUE pairs for the engine.
// A missing file yields no variables.
func (c *Config) EngineEnv() ([]string, error) {
	if c.EnvFile == "" {
		return nil, nil
	}
	path := c.EnvFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.ProjectPath, path)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	env := make([]string, 0, len(values))
	for _, k := range sortedKeys(values) {
		env = append(env, k+"="+values[k])
	}
	return env, nil
}
