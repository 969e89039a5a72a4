package server

import (
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

const (
	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultReadBufferSize is the size of each socket read.
	DefaultReadBufferSize = 32 * 1024
)

// Config holds server configuration.
type Config struct {
	Address         string
	Name            string
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxMessageSize  int
	ReadBufferSize  int
	KeepAlive       network.KeepAliveConfig
}

// SetDefaults applies default values to the config.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = "127.0.0.1:8080"
	}
	if c.Name == "" {
		c.Name = network.DefaultServerName
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = network.DefaultKeepAliveTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = network.DefaultMaxMessageSize
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.KeepAlive.Timeout == 0 {
		c.KeepAlive.Timeout = network.DefaultKeepAliveTimeout
	}
	if c.KeepAlive.MaxRequests == 0 {
		c.KeepAlive.MaxRequests = network.DefaultKeepAliveMaxRequests
	}
}
