package config

import (
	"strconv"
	"time"
)

// Default configuration values.
const (
	defaultServiceName     = "static-httpd"
	defaultHost            = "127.0.0.1"
	defaultPort            = 8080
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxMessageSize  = 10 * 1024 * 1024
	defaultReadBufferSize  = 32 * 1024

	defaultKeepAliveTimeout     = 60 * time.Second
	defaultKeepAliveMaxRequests = 100

	defaultStaticRoot        = "./public"
	defaultCacheMaxBytes     = 10 * 1024 * 1024
	defaultCacheMaxFileBytes = 100 * 1024
	defaultCacheThreshold    = 100 * 1024

	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "json"
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Server    ServerConfig    `yaml:"server"`
	KeepAlive KeepAliveConfig `yaml:"keep_alive"`
	Static    StaticConfig    `yaml:"static"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServiceConfig holds service-level settings.
type ServiceConfig struct {
	Name  string `yaml:"name"`
	Debug bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ServerConfig holds listener and connection settings.
type ServerConfig struct {
	Host string `env:"HTTPD_HOST" yaml:"host"`
	Port int    `env:"HTTPD_PORT" yaml:"port"`
	// IdleTimeout closes a connection when no bytes arrive within the window.
	IdleTimeout     time.Duration `env:"HTTPD_IDLE_TIMEOUT"     yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `env:"HTTPD_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	MaxMessageSize  int           `env:"HTTPD_MAX_MESSAGE_SIZE" yaml:"max_message_size"`
	ReadBufferSize  int           `yaml:"read_buffer_size"`
}

// Address returns host:port.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// KeepAliveConfig controls connection reuse.
type KeepAliveConfig struct {
	Enabled     *bool         `yaml:"enabled"`
	Timeout     time.Duration `env:"HTTPD_KEEPALIVE_TIMEOUT"      yaml:"timeout"`
	MaxRequests int           `env:"HTTPD_KEEPALIVE_MAX_REQUESTS" yaml:"max_requests"`
}

// IsEnabled reports whether keep-alive is on. Unset means enabled.
func (c *KeepAliveConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// StaticConfig controls static file delivery and the file cache.
type StaticConfig struct {
	Root              string `env:"HTTPD_STATIC_ROOT" yaml:"root"`
	CacheMaxBytes     int64  `yaml:"cache_max_bytes"`
	CacheMaxFileBytes int64  `yaml:"cache_max_file_bytes"`
	// CacheThreshold is the size at or under which files are cached instead of streamed.
	CacheThreshold int64 `yaml:"cache_threshold"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// MetricsConfig toggles the /metrics route.
type MetricsConfig struct {
	Enabled bool `env:"HTTPD_METRICS_ENABLED" yaml:"enabled"`
}

// Load loads configuration from path.
func Load(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	setServerDefaults(&cfg.Server)
	setKeepAliveDefaults(&cfg.KeepAlive)
	setStaticDefaults(&cfg.Static)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLoggingFormat
	}
}

func setServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = defaultHost
	}
	if s.Port == 0 {
		s.Port = defaultPort
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = defaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
	if s.MaxMessageSize == 0 {
		s.MaxMessageSize = defaultMaxMessageSize
	}
	if s.ReadBufferSize == 0 {
		s.ReadBufferSize = defaultReadBufferSize
	}
}

func setKeepAliveDefaults(k *KeepAliveConfig) {
	if k.Timeout == 0 {
		k.Timeout = defaultKeepAliveTimeout
	}
	if k.MaxRequests == 0 {
		k.MaxRequests = defaultKeepAliveMaxRequests
	}
}

func setStaticDefaults(s *StaticConfig) {
	if s.Root == "" {
		s.Root = defaultStaticRoot
	}
	if s.CacheMaxBytes == 0 {
		s.CacheMaxBytes = defaultCacheMaxBytes
	}
	if s.CacheMaxFileBytes == 0 {
		s.CacheMaxFileBytes = defaultCacheMaxFileBytes
	}
	if s.CacheThreshold == 0 {
		s.CacheThreshold = defaultCacheThreshold
	}
}
