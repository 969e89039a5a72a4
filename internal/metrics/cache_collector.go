package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/filecache"
)

// cacheCollector reads filecache stats at scrape time.
type cacheCollector struct {
	cache *filecache.Cache

	entries   *prometheus.Desc
	bytes     *prometheus.Desc
	maxBytes  *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
}

func newCacheCollector(c *filecache.Cache) *cacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "file_cache", name), help, nil, nil)
	}
	return &cacheCollector{
		cache:     c,
		entries:   desc("entries", "Files resident in the cache"),
		bytes:     desc("bytes", "Sum of resident file sizes"),
		maxBytes:  desc("max_bytes", "Configured cache capacity"),
		hits:      desc("hits_total", "Cache hits since start"),
		misses:    desc("misses_total", "Cache misses since start"),
		evictions: desc("evictions_total", "Entries evicted to make room"),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.bytes
	ch <- c.maxBytes
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(s.TotalBytes))
	ch <- prometheus.MustNewConstMetric(c.maxBytes, prometheus.GaugeValue, float64(s.MaxBytes))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
}
