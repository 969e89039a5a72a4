package network

import (
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

const (
	// DefaultKeepAliveTimeout is the idle window between requests.
	DefaultKeepAliveTimeout = 60 * time.Second
	// DefaultKeepAliveMaxRequests caps requests served on one connection.
	DefaultKeepAliveMaxRequests = 100
)

// KeepAliveConfig configures a KeepAlive session.
type KeepAliveConfig struct {
	Enabled     bool
	Timeout     time.Duration
	MaxRequests int
}

// DefaultKeepAliveConfig returns keep-alive enabled with default limits.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		Enabled:     true,
		Timeout:     DefaultKeepAliveTimeout,
		MaxRequests: DefaultKeepAliveMaxRequests,
	}
}

// KeepAliveStats is a snapshot of a session.
type KeepAliveStats struct {
	Enabled           bool          `json:"enabled"`
	RequestCount      int           `json:"request_count"`
	MaxRequests       int           `json:"max_requests"`
	RemainingRequests int           `json:"remaining_requests"`
	IdleTime          time.Duration `json:"idle_time"`
	Timeout           time.Duration `json:"timeout"`
	IsAlive           bool          `json:"is_alive"`
}

// KeepAlive tracks request count and idle time for one connection and
// decides whether it may stay open.
type KeepAlive struct {
	cfg          KeepAliveConfig
	requestCount int
	lastActivity time.Time
	now          func() time.Time
}

// NewKeepAlive returns a session starting now.
func NewKeepAlive(cfg KeepAliveConfig) *KeepAlive {
	return newKeepAliveWithClock(cfg, time.Now)
}

func newKeepAliveWithClock(cfg KeepAliveConfig, now func() time.Time) *KeepAlive {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultKeepAliveTimeout
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultKeepAliveMaxRequests
	}
	return &KeepAlive{cfg: cfg, lastActivity: now(), now: now}
}

// IncrementRequests records a served request and refreshes the idle clock.
func (k *KeepAlive) IncrementRequests() {
	k.requestCount++
	k.lastActivity = k.now()
}

// ShouldKeepAlive reports whether the connection may stay open.
func (k *KeepAlive) ShouldKeepAlive() bool {
	if !k.cfg.Enabled {
		return false
	}
	if k.requestCount >= k.cfg.MaxRequests {
		return false
	}
	return k.now().Sub(k.lastActivity) <= k.cfg.Timeout
}

// ConnectionHeader returns the Connection header value.
func (k *KeepAlive) ConnectionHeader() string {
	if k.ShouldKeepAlive() {
		return "keep-alive"
	}
	return "close"
}

// KeepAliveHeader returns the Keep-Alive header value, or "" when the
// connection is closing.
func (k *KeepAlive) KeepAliveHeader() string {
	if !k.ShouldKeepAlive() {
		return ""
	}
	return fmt.Sprintf("timeout=%d, max=%d", int(k.cfg.Timeout/time.Second), k.remaining())
}

// Apply sets Connection and, when alive, Keep-Alive on h.
func (k *KeepAlive) Apply(h *httpmsg.Headers) {
	h.Set(httpmsg.HeaderConnection, k.ConnectionHeader())
	if v := k.KeepAliveHeader(); v != "" {
		h.Set(httpmsg.HeaderKeepAlive, v)
	} else {
		h.Delete(httpmsg.HeaderKeepAlive)
	}
}

// Timeout returns the configured idle window.
func (k *KeepAlive) Timeout() time.Duration {
	return k.cfg.Timeout
}

// Stats returns a snapshot of the session.
func (k *KeepAlive) Stats() KeepAliveStats {
	return KeepAliveStats{
		Enabled:           k.cfg.Enabled,
		RequestCount:      k.requestCount,
		MaxRequests:       k.cfg.MaxRequests,
		RemainingRequests: k.remaining(),
		IdleTime:          k.now().Sub(k.lastActivity),
		Timeout:           k.cfg.Timeout,
		IsAlive:           k.ShouldKeepAlive(),
	}
}

// Reset zeroes the request count and refreshes the idle clock.
func (k *KeepAlive) Reset() {
	k.requestCount = 0
	k.lastActivity = k.now()
}

func (k *KeepAlive) remaining() int {
	if r := k.cfg.MaxRequests - k.requestCount; r > 0 {
		return r
	}
	return 0
}
