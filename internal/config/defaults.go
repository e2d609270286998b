package config

const (
	// DefaultProjectPath is the default project root
	DefaultProjectPath = "."
	// DefaultTestPath is the default path where discovery starts
	DefaultTestPath = "."
	// DefaultPattern is the default file name pattern for test discovery
	DefaultPattern = "test_*.py"
	// DefaultEngine is the test engine binary
	DefaultEngine = "pytest"
	// DefaultParallel disables engine level parallelism
	DefaultParallel = 0
	// DefaultRetries disables retry rounds
	DefaultRetries = 0
	// DefaultClear clears previous outputs before a run
	DefaultClear = true
	// DefaultEnvFile is read into the engine environment when present
	DefaultEnvFile = ".env"
	// DefaultConfigName is the base name of the optional config file
	DefaultConfigName = "suitectl"
	// DefaultEnvPrefix prefixes environment overrides, e.g. SUITECTL_RUN_RETRIES
	DefaultEnvPrefix = "SUITECTL"

	// DefaultLogFile is created below the logs directory of the run
	DefaultLogFile       = "suitectl.log"
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 28
	DefaultLogCompress   = false
)

// DefaultPathsToIgnore are the directories skipped when scanning for tests
var DefaultPathsToIgnore = []string{
	".venv",
	"venv",
	"__pycache__",
	"node_modules",
	"reports",
	"logs",
	"videos",
	"screenshots",
	"session",
}
