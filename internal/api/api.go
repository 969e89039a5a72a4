// Package api registers the application routes on a router.
package api

import (
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/metrics"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/monitoring"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/router"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/static"
)

const bannerHTML = "<h1>HTTP Server</h1><p>Server is running</p>"

// Deps are the components the routes read from.
type Deps struct {
	Static  *static.Handler
	Metrics *metrics.Metrics
	Logger  logger.Logger
	Started time.Time
}

// Handlers serves the application routes.
type Handlers struct {
	static  *static.Handler
	metrics *metrics.Metrics
	log     logger.Logger
	started time.Time
}

// NewHandlers returns handlers over deps.
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}
	return &Handlers{
		static:  deps.Static,
		metrics: deps.Metrics,
		log:     deps.Logger,
		started: deps.Started,
	}
}

// Register adds every route to r. The static catch-all goes last so it
// only sees paths no other GET route claimed.
func (h *Handlers) Register(r *router.Router) {
	r.Get("/", router.Simple(h.Index))
	r.Get("/status", router.Simple(h.Status))
	r.Get("/health", router.Simple(h.Health))
	r.Post("/api/users", router.Simple(h.CreateUser))

	r.Get("/cache/stats", router.Simple(h.CacheStats))
	r.Delete("/cache", router.Simple(h.ClearCache))
	r.Delete("/cache/entry", router.Simple(h.EvictCacheEntry))

	if h.metrics != nil {
		r.Get("/metrics", router.Simple(h.metrics.Handle))
	}
	if h.static != nil {
		r.Get("*", router.WithContext(h.static.Serve))
	}
}

// Index serves the banner page.
func (h *Handlers) Index(_ *httpmsg.Request, res *httpmsg.Response) error {
	res.SetHTMLBody(bannerHTML)
	return nil
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string                    `json:"status"`
	Uptime    float64                   `json:"uptime"`
	Memory    monitoring.MemorySnapshot `json:"memory"`
	Timestamp string                    `json:"timestamp"`
	PID       int                       `json:"pid"`
}

// Status reports uptime and memory.
func (h *Handlers) Status(_ *httpmsg.Request, res *httpmsg.Response) error {
	return res.SetJSONBody(StatusResponse{
		Status:    "running",
		Uptime:    time.Since(h.started).Seconds(),
		Memory:    monitoring.TakeSnapshot(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		PID:       os.Getpid(),
	})
}

// Health is a liveness probe.
func (h *Handlers) Health(_ *httpmsg.Request, res *httpmsg.Response) error {
	return res.SetJSONBody(map[string]string{"status": "ok"})
}
