package config

const (
	defaultStateDir         = "~/.local/share/nbr"
	defaultLogDir           = "~/.local/share/nbr/logs"
	defaultStrategy         = StrategyPool
	defaultQueueDepth       = 64
	defaultFontSize         = 48.0
	defaultFontDPI          = 72.0
	defaultHistoryEnabled   = true
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	logLevelEnv = "NBR_LOG_LEVEL"
)

var defaultIgnore = []string{".DS_Store", "Thumbs.db", "*.psd", "*.blend1", "*~"}

// Default returns a configuration populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Build: Build{
			Strategy:   defaultStrategy,
			QueueDepth: defaultQueueDepth,
			Ignore:     append([]string(nil), defaultIgnore...),
		},
		Loaders: Loaders{
			FontSize: defaultFontSize,
			FontDPI:  defaultFontDPI,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
