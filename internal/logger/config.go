package logger

// Config represents the logger configuration.
type Config struct {
	// Level is the minimum logging level (debug, info, warn, error, fatal).
	Level string `env:"LOG_LEVEL" yaml:"level"`
	// Format is "json" or "console".
	Format string `env:"LOG_FORMAT" yaml:"format"`
	// Development disables sampling so every entry is visible.
	Development bool `yaml:"development"`
	// OutputPaths lists the sinks log output is written to.
	OutputPaths []string `yaml:"output_paths"`
}

// Defaults.
const (
	DefaultLevel  = "info"
	DefaultFormat = "json"
)

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stdout"}
	}
}
