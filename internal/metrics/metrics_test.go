package metrics_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/filecache"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/metrics"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/middleware"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

func TestConnections(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed("keep_alive_exhausted")

	assert.InDelta(t, 2, testutil.ToFloat64(m.ConnectionsAccepted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ConnectionsActive), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ConnectionsClosed.WithLabelValues("keep_alive_exhausted")), 0)
}

func TestStaticObserver(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.StreamFinished(1024, nil)
	m.StreamFinished(10, fmt.Errorf("write: %w", network.ErrConnectionClosed))
	m.StreamFinished(0, errors.New("disk"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1034, testutil.ToFloat64(m.StreamedBytes), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StreamsTotal.WithLabelValues("complete")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StreamsTotal.WithLabelValues("client_gone")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StreamsTotal.WithLabelValues("failed")), 0)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	chain := middleware.NewChain(m.Middleware())

	req := httpmsg.NewRequest()
	req.Method = httpmsg.MethodPost
	res := httpmsg.NewResponse()
	err := chain.Run(context.Background(), req, res, func() error {
		res.SetStatus(httpmsg.StatusCreated)
		time.Sleep(time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "201")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestCacheCollector(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	cache := filecache.New(filecache.Config{MaxBytes: 1000, MaxFileBytes: 100})
	require.NoError(t, m.RegisterCache(cache))

	cache.Set("/a", []byte("hello"), time.Now())
	cache.Get("/a")
	cache.Get("/b")

	expected := `
# HELP httpd_file_cache_bytes Sum of resident file sizes
# TYPE httpd_file_cache_bytes gauge
httpd_file_cache_bytes 5
# HELP httpd_file_cache_entries Files resident in the cache
# TYPE httpd_file_cache_entries gauge
httpd_file_cache_entries 1
# HELP httpd_file_cache_hits_total Cache hits since start
# TYPE httpd_file_cache_hits_total counter
httpd_file_cache_hits_total 1
# HELP httpd_file_cache_misses_total Cache misses since start
# TYPE httpd_file_cache_misses_total counter
httpd_file_cache_misses_total 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"httpd_file_cache_bytes",
		"httpd_file_cache_entries",
		"httpd_file_cache_hits_total",
		"httpd_file_cache_misses_total",
	)
	require.NoError(t, err)

	require.Error(t, m.RegisterCache(cache), "registering twice conflicts")
}

func TestHandle(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ParseFailed("malformed_request_line")

	res := httpmsg.NewResponse()
	require.NoError(t, m.Handle(httpmsg.NewRequest(), res))

	assert.Equal(t, metrics.ContentType, res.Headers.ContentType())
	body := string(res.Body())
	assert.Contains(t, body, `httpd_parse_errors_total{reason="malformed_request_line"} 1`)
	assert.Contains(t, body, "go_goroutines")

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	assert.Contains(t, buf.String(), "# TYPE httpd_connections_active gauge")
}
