package config

import "fmt"

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Server.MaxMessageSize <= 0 {
		return &ValidationError{Field: "server.max_message_size", Message: "must be positive"}
	}
	if c.KeepAlive.MaxRequests < 0 {
		return &ValidationError{Field: "keep_alive.max_requests", Message: "must not be negative"}
	}
	if c.Static.CacheMaxFileBytes > c.Static.CacheMaxBytes {
		return &ValidationError{Field: "static.cache_max_file_bytes", Message: "must not exceed static.cache_max_bytes"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
	return nil
}
