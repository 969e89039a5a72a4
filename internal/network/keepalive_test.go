package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestKeepAlive(cfg KeepAliveConfig) (*KeepAlive, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newKeepAliveWithClock(cfg, clock.now), clock
}

func TestKeepAlive_Defaults(t *testing.T) {
	t.Parallel()

	ka, _ := newTestKeepAlive(DefaultKeepAliveConfig())

	assert.True(t, ka.ShouldKeepAlive())
	assert.Equal(t, "keep-alive", ka.ConnectionHeader())
	assert.Equal(t, "timeout=60, max=100", ka.KeepAliveHeader())
}

func TestKeepAlive_MaxRequests(t *testing.T) {
	t.Parallel()

	ka, _ := newTestKeepAlive(KeepAliveConfig{Enabled: true, Timeout: time.Minute, MaxRequests: 3})

	ka.IncrementRequests()
	ka.IncrementRequests()
	assert.True(t, ka.ShouldKeepAlive())
	assert.Equal(t, "timeout=60, max=1", ka.KeepAliveHeader())

	ka.IncrementRequests()
	assert.False(t, ka.ShouldKeepAlive())
	assert.Equal(t, "close", ka.ConnectionHeader())
	assert.Empty(t, ka.KeepAliveHeader())
}

func TestKeepAlive_IdleTimeout(t *testing.T) {
	t.Parallel()

	ka, clock := newTestKeepAlive(KeepAliveConfig{Enabled: true, Timeout: 5 * time.Second, MaxRequests: 10})

	clock.advance(5 * time.Second)
	assert.True(t, ka.ShouldKeepAlive(), "boundary is inclusive")

	clock.advance(time.Millisecond)
	assert.False(t, ka.ShouldKeepAlive())

	ka.IncrementRequests()
	assert.True(t, ka.ShouldKeepAlive())
}

func TestKeepAlive_Disabled(t *testing.T) {
	t.Parallel()

	ka, _ := newTestKeepAlive(KeepAliveConfig{Enabled: false})

	assert.False(t, ka.ShouldKeepAlive())
	assert.Equal(t, "close", ka.ConnectionHeader())
}

func TestKeepAlive_Apply(t *testing.T) {
	t.Parallel()

	ka, _ := newTestKeepAlive(KeepAliveConfig{Enabled: true, Timeout: 30 * time.Second, MaxRequests: 1})
	h := httpmsg.NewHeaders()

	ka.Apply(h)
	assert.Equal(t, "keep-alive", h.Value(httpmsg.HeaderConnection))
	assert.Equal(t, "timeout=30, max=1", h.Value(httpmsg.HeaderKeepAlive))

	ka.IncrementRequests()
	ka.Apply(h)
	assert.Equal(t, "close", h.Value(httpmsg.HeaderConnection))
	assert.False(t, h.Has(httpmsg.HeaderKeepAlive))
}

func TestKeepAlive_StatsAndReset(t *testing.T) {
	t.Parallel()

	ka, clock := newTestKeepAlive(KeepAliveConfig{Enabled: true, Timeout: time.Minute, MaxRequests: 2})
	ka.IncrementRequests()
	ka.IncrementRequests()
	clock.advance(2 * time.Second)

	stats := ka.Stats()
	assert.Equal(t, 2, stats.RequestCount)
	assert.Equal(t, 0, stats.RemainingRequests)
	assert.Equal(t, 2*time.Second, stats.IdleTime)
	assert.False(t, stats.IsAlive)

	ka.Reset()
	assert.True(t, ka.ShouldKeepAlive())
	assert.Equal(t, 0, ka.Stats().RequestCount)
}
