// Package metrics exposes Prometheus metrics for connections, requests,
// the file cache and streamed responses.
package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/filecache"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/middleware"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/network"
)

const namespace = "httpd"

// ContentType is the text exposition format content type.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Metrics holds all server Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	ConnectionsClosed   *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ParseErrors     *prometheus.CounterVec

	// Static file metrics
	CacheLookups  *prometheus.CounterVec
	StreamsTotal  *prometheus.CounterVec
	StreamedBytes prometheus.Counter
}

// New registers every metric on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg}
	factory := promauto.With(reg)
	initConnectionMetrics(m, factory)
	initRequestMetrics(m, factory)
	initStaticMetrics(m, factory)
	return m
}

func initConnectionMetrics(m *Metrics, f promauto.Factory) {
	m.ConnectionsAccepted = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_accepted_total",
		Help:      "Total TCP connections accepted",
	})

	m.ConnectionsActive = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Connections currently open",
	})

	m.ConnectionsClosed = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_closed_total",
		Help:      "Connections closed, by reason",
	}, []string{"reason"})
}

func initRequestMetrics(m *Metrics, f promauto.Factory) {
	m.RequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Requests dispatched, by method and status code",
	}, []string{"method", "status"})

	m.RequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Time spent in the middleware chain and handler",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method"})

	m.ParseErrors = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_errors_total",
		Help:      "Messages rejected before dispatch, by reason",
	}, []string{"reason"})
}

func initStaticMetrics(m *Metrics, f promauto.Factory) {
	m.CacheLookups = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "file_cache_lookups_total",
		Help:      "File cache lookups, by result",
	}, []string{"result"})

	m.StreamsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streams_total",
		Help:      "Large file streams, by outcome",
	}, []string{"result"})

	m.StreamedBytes = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streamed_bytes_total",
		Help:      "Body bytes written by streamed responses",
	})
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterCache exports c's counters as gauges.
func (m *Metrics) RegisterCache(c *filecache.Cache) error {
	if err := m.registry.Register(newCacheCollector(c)); err != nil {
		return fmt.Errorf("register cache collector: %w", err)
	}
	return nil
}

// ConnectionOpened records an accepted connection.
func (m *Metrics) ConnectionOpened() {
	m.ConnectionsAccepted.Inc()
	m.ConnectionsActive.Inc()
}

// ConnectionClosed records a connection ending for reason.
func (m *Metrics) ConnectionClosed(reason string) {
	m.ConnectionsActive.Dec()
	m.ConnectionsClosed.WithLabelValues(reason).Inc()
}

// ParseFailed records a message rejected before dispatch.
func (m *Metrics) ParseFailed(reason string) {
	m.ParseErrors.WithLabelValues(reason).Inc()
}

// CacheLookup records a file cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// StreamFinished records the outcome of one streamed response.
func (m *Metrics) StreamFinished(written int64, err error) {
	m.StreamedBytes.Add(float64(written))
	switch {
	case err == nil:
		m.StreamsTotal.WithLabelValues("complete").Inc()
	case errors.Is(err, network.ErrConnectionClosed):
		m.StreamsTotal.WithLabelValues("client_gone").Inc()
	default:
		m.StreamsTotal.WithLabelValues("failed").Inc()
	}
}

// Middleware counts requests and measures their duration.
func (m *Metrics) Middleware() middleware.Func {
	return func(_ context.Context, req *httpmsg.Request, res *httpmsg.Response, next middleware.Next) error {
		start := time.Now()
		err := next()
		method := req.Method.String()
		m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		m.RequestsTotal.WithLabelValues(method, strconv.Itoa(res.Status())).Inc()
		return err
	}
}

// WriteText writes every gathered family in the text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if err := writeFamily(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func writeFamily(w io.Writer, mf *dto.MetricFamily) error {
	if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
		return fmt.Errorf("encode %s: %w", mf.GetName(), err)
	}
	return nil
}

// Handle renders the exposition into res.
func (m *Metrics) Handle(_ *httpmsg.Request, res *httpmsg.Response) error {
	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		return err
	}
	res.SetBody(buf.Bytes())
	res.Headers.SetContentType(ContentType)
	return nil
}
