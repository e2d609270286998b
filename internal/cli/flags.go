package cli

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"suitectl/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Path       string
	Pattern    string
	NameFilter string
	Parallel   int
	Retries    int
	Clear      bool
	NoClear    bool
	Resume     bool
	Markers    string
	KExpr      string
	EngineArgs string
	TestCases  bool
	Verbose    bool
}

// ConfigKeys maps flag names to the config keys they override
var ConfigKeys = map[string]string{
	"pattern":     config.KeyPattern,
	"parallel":    config.KeyParallel,
	"retries":     config.KeyRetries,
	"clear":       config.KeyClear,
	"engine-args": config.KeyEngineArgs,
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Path:       f.Path,
		NameFilter: f.NameFilter,
		Markers:    f.Markers,
		KExpr:      f.KExpr,
		Resume:     f.Resume,
		TestCases:  f.TestCases,
		Verbose:    f.Verbose,
	}
}

// BindFlags wires the flags of fs to viper keys so an explicit flag wins over
// suitectl.yaml and SUITECTL_* values. Flags the command does not define are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s to %s: %w", name, key, err)
		}
	}
	return nil
}

// LoadConfig binds the command flags and builds the effective configuration
func LoadConfig(v *viper.Viper, fs *pflag.FlagSet, flags *Flags) (*config.Config, error) {
	if err := BindFlags(v, fs, ConfigKeys); err != nil {
		return nil, err
	}
	if err := config.ReadInConfig(v); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := config.Load(v, flags.ToConfigFlags())
	if flags.NoClear {
		cfg.Clear = false
	}
	return cfg, nil
}
