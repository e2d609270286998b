package config

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Viper keys. Flags bound to these keys take precedence over the config file and env.
const (
	KeyProject       = "project"
	KeyTestPath      = "tests"
	KeyPattern       = "run.pattern"
	KeyParallel      = "run.parallel"
	KeyRetries       = "run.retries"
	KeyClear         = "run.clear"
	KeyEngine        = "engine.binary"
	KeyEngineArgs    = "engine.args"
	KeyEnvFile       = "engine.env_file"
	KeyIgnore        = "paths.ignore"
	KeyLogFilename   = "log.filename"
	KeyLogLevel      = "log.level"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyLogCompress   = "log.compress"
)

// NewViper returns a viper instance with defaults, env binding and the optional
// suitectl.yaml from the working directory.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyProject, DefaultProjectPath)
	v.SetDefault(KeyTestPath, DefaultTestPath)
	v.SetDefault(KeyPattern, DefaultPattern)
	v.SetDefault(KeyParallel, DefaultParallel)
	v.SetDefault(KeyRetries, DefaultRetries)
	v.SetDefault(KeyClear, DefaultClear)
	v.SetDefault(KeyEngine, DefaultEngine)
	v.SetDefault(KeyEngineArgs, "")
	v.SetDefault(KeyEnvFile, DefaultEnvFile)
	v.SetDefault(KeyIgnore, DefaultPathsToIgnore)
	v.SetDefault(KeyLogFilename, DefaultLogFile)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogMaxSize, DefaultLogMaxSize)
	v.SetDefault(KeyLogMaxBackups, DefaultLogMaxBackups)
	v.SetDefault(KeyLogMaxAge, DefaultLogMaxAge)
	v.SetDefault(KeyLogCompress, DefaultLogCompress)

	return v
}

// ReadInConfig reads the config file if one exists.
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load builds a Config from viper and the per invocation flags
func Load(v *viper.Viper, flags Flags) *Config {
	cfg := New()
	cfg.Flags = flags

	cfg.ProjectPath = v.GetString(KeyProject)
	cfg.TestPath = v.GetString(KeyTestPath)
	cfg.Pattern = v.GetString(KeyPattern)
	cfg.Parallel = v.GetInt(KeyParallel)
	cfg.Retries = v.GetInt(KeyRetries)
	cfg.Clear = v.GetBool(KeyClear)
	cfg.Engine = v.GetString(KeyEngine)
	cfg.EngineArgs = v.GetString(KeyEngineArgs)
	cfg.EnvFile = v.GetString(KeyEnvFile)
	if ignore := v.GetStringSlice(KeyIgnore); len(ignore) > 0 {
		cfg.PathsToIgnore = ignore
	}

	cfg.Log = LogConfig{
		Filename:   v.GetString(KeyLogFilename),
		Level:      v.GetString(KeyLogLevel),
		MaxSize:    v.GetInt(KeyLogMaxSize),
		MaxBackups: v.GetInt(KeyLogMaxBackups),
		MaxAge:     v.GetInt(KeyLogMaxAge),
		Compress:   v.GetBool(KeyLogCompress),
	}

	if cfg.Parallel < 0 {
		cfg.Parallel = 0
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	return cfg
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
